package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satyasricomputers/servicecenter/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (s *GormStore) CreateUser(user *models.User) error {
	prepareUser(user, time.Now())
	return s.db.Create(user).Error
}

func (s *GormStore) GetCustomer(id string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &customer, nil
}

// GetCustomerByPhone returns the oldest customer record carrying the
// phone number; phone is not unique, so ties resolve deterministically
// to the first record ever created.
func (s *GormStore) GetCustomerByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Where("phone = ?", phone).
		Order("created_at ASC, id ASC").
		First(&customer).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &customer, nil
}

func (s *GormStore) CreateCustomer(customer *models.Customer) error {
	prepareCustomer(customer, time.Now())
	return s.db.Create(customer).Error
}

func (s *GormStore) ListCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *GormStore) GetTicket(id string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &ticket, nil
}

func (s *GormStore) GetTicketByTicketID(ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, "ticket_id = ?", ticketID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &ticket, nil
}

func (s *GormStore) CreateTicket(ticket *models.Ticket) error {
	prepareTicket(ticket, time.Now())
	return s.db.Create(ticket).Error
}

func (s *GormStore) UpdateTicketStatus(ticketID string, update TicketStatusUpdate) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ticket, "ticket_id = ?", ticketID).Error; err != nil {
			return mapNotFound(err)
		}
		applyStatusUpdate(&ticket, update, time.Now())
		return tx.Save(&ticket).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *GormStore) ListTickets() ([]models.TicketWithCustomer, error) {
	return s.listTickets(nil)
}

func (s *GormStore) ListTicketsByTechnician(technicianID string) ([]models.TicketWithCustomer, error) {
	return s.listTickets(func(q *gorm.DB) *gorm.DB {
		return q.Where("assigned_technician = ?", technicianID)
	})
}

func (s *GormStore) ListTicketsByStatus(status string) ([]models.TicketWithCustomer, error) {
	return s.listTickets(func(q *gorm.DB) *gorm.DB {
		return q.Where("service_status = ?", status)
	})
}

// listTickets loads tickets newest first, then resolves owning
// customers and assigned technician names in two batched lookups.
// Tickets whose customer no longer resolves are dropped; a dangling
// technician reference just loses its display name.
func (s *GormStore) listTickets(scope func(*gorm.DB) *gorm.DB) ([]models.TicketWithCustomer, error) {
	q := s.db.Order("created_at DESC")
	if scope != nil {
		q = scope(q)
	}

	var tickets []models.Ticket
	if err := q.Find(&tickets).Error; err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return []models.TicketWithCustomer{}, nil
	}

	customerIDs := make([]string, 0, len(tickets))
	technicianIDs := make([]string, 0, len(tickets))
	for _, t := range tickets {
		customerIDs = append(customerIDs, t.CustomerID)
		if t.AssignedTechnician != "" {
			technicianIDs = append(technicianIDs, t.AssignedTechnician)
		}
	}

	var customers []models.Customer
	if err := s.db.Where("id IN ?", customerIDs).Find(&customers).Error; err != nil {
		return nil, err
	}
	customersByID := make(map[string]models.Customer, len(customers))
	for _, c := range customers {
		customersByID[c.ID] = c
	}

	techniciansByID := make(map[string]string)
	if len(technicianIDs) > 0 {
		var technicians []models.User
		if err := s.db.Where("id IN ?", technicianIDs).Find(&technicians).Error; err != nil {
			return nil, err
		}
		for _, u := range technicians {
			techniciansByID[u.ID] = u.FullName
		}
	}

	result := make([]models.TicketWithCustomer, 0, len(tickets))
	for _, t := range tickets {
		customer, ok := customersByID[t.CustomerID]
		if !ok {
			continue
		}
		result = append(result, models.TicketWithCustomer{
			Ticket:                 t,
			Customer:               customer,
			AssignedTechnicianName: techniciansByID[t.AssignedTechnician],
		})
	}
	return result, nil
}

// NextTicketSequence increments the per-day counter inside one
// transaction: ensure the row exists, lock it, bump it. Two tickets
// created the same instant can never draw the same number.
func (s *GormStore) NextTicketSequence(dateKey string) (int, error) {
	var next int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.TicketSequence{Date: dateKey, Sequence: 0}).Error; err != nil {
			return err
		}

		var counter models.TicketSequence
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&counter, "date = ?", dateKey).Error; err != nil {
			return err
		}

		next = counter.Sequence + 1
		return tx.Model(&models.TicketSequence{}).
			Where("date = ?", dateKey).
			Update("sequence", next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
