package store

import (
	"sort"
	"sync"
	"time"

	"github.com/satyasricomputers/servicecenter/models"
)

// MemoryStore keeps everything in process memory behind one mutex. It
// exists as a test double for the Store interface; production runs on
// GormStore.
type MemoryStore struct {
	mu        sync.Mutex
	users     []models.User
	customers []models.Customer
	tickets   []models.Ticket
	sequences map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sequences: make(map[string]int),
	}
}

func (s *MemoryStore) GetUser(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepareUser(user, time.Now())
	s.users = append(s.users, *user)
	return nil
}

func (s *MemoryStore) GetCustomer(id string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if c.ID == id {
			customer := c
			return &customer, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetCustomerByPhone(phone string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// customers are held in creation order, so the first hit is the
	// oldest record, matching GormStore's tie resolution
	for _, c := range s.customers {
		if c.Phone == phone {
			customer := c
			return &customer, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateCustomer(customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepareCustomer(customer, time.Now())
	s.customers = append(s.customers, *customer)
	return nil
}

func (s *MemoryStore) ListCustomers() ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	customers := make([]models.Customer, 0, len(s.customers))
	for i := len(s.customers) - 1; i >= 0; i-- {
		customers = append(customers, s.customers[i])
	}
	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	return customers, nil
}

func (s *MemoryStore) GetTicket(id string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return copyTicket(t), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetTicketByTicketID(ticketID string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.TicketID == ticketID {
			return copyTicket(t), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateTicket(ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepareTicket(ticket, time.Now())
	s.tickets = append(s.tickets, *ticket)
	return nil
}

func (s *MemoryStore) UpdateTicketStatus(ticketID string, update TicketStatusUpdate) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].TicketID == ticketID {
			applyStatusUpdate(&s.tickets[i], update, time.Now())
			return copyTicket(s.tickets[i]), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListTickets() ([]models.TicketWithCustomer, error) {
	return s.listTickets(nil)
}

func (s *MemoryStore) ListTicketsByTechnician(technicianID string) ([]models.TicketWithCustomer, error) {
	return s.listTickets(func(t models.Ticket) bool {
		return t.AssignedTechnician == technicianID
	})
}

func (s *MemoryStore) ListTicketsByStatus(status string) ([]models.TicketWithCustomer, error) {
	return s.listTickets(func(t models.Ticket) bool {
		return t.ServiceStatus == status
	})
}

func (s *MemoryStore) listTickets(keep func(models.Ticket) bool) ([]models.TicketWithCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customersByID := make(map[string]models.Customer, len(s.customers))
	for _, c := range s.customers {
		customersByID[c.ID] = c
	}
	techniciansByID := make(map[string]string, len(s.users))
	for _, u := range s.users {
		techniciansByID[u.ID] = u.FullName
	}

	result := make([]models.TicketWithCustomer, 0, len(s.tickets))
	for i := len(s.tickets) - 1; i >= 0; i-- {
		t := s.tickets[i]
		if keep != nil && !keep(t) {
			continue
		}
		customer, ok := customersByID[t.CustomerID]
		if !ok {
			continue
		}
		result = append(result, models.TicketWithCustomer{
			Ticket:                 *copyTicket(t),
			Customer:               customer,
			AssignedTechnicianName: techniciansByID[t.AssignedTechnician],
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) NextTicketSequence(dateKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[dateKey]++
	return s.sequences[dateKey], nil
}

// copyTicket detaches the notes slice so callers never alias stored
// state.
func copyTicket(t models.Ticket) *models.Ticket {
	ticket := t
	ticket.ServiceNotes = append([]models.ServiceNote(nil), t.ServiceNotes...)
	return &ticket
}
