package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/satyasricomputers/servicecenter/models"
)

// ErrNotFound is returned when a referenced record does not resolve.
// Callers map it to an absent result; it is never a server fault.
var ErrNotFound = errors.New("record not found")

// TicketStatusUpdate carries the fields of a status update.
// ServiceStatus is required and replaces the current value; empty
// strings and nil pointers leave the corresponding field unchanged.
type TicketStatusUpdate struct {
	ServiceStatus string
	Priority      string
	PaymentStatus string
	FinalCost     *float64
	ServiceNote   string
	Photos        []string
	TechnicianID  string
}

// Store is the persistence boundary of the service center. GormStore
// backs it in production; MemoryStore is the test double.
type Store interface {
	GetUser(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	CreateUser(user *models.User) error

	GetCustomer(id string) (*models.Customer, error)
	GetCustomerByPhone(phone string) (*models.Customer, error)
	CreateCustomer(customer *models.Customer) error
	ListCustomers() ([]models.Customer, error)

	GetTicket(id string) (*models.Ticket, error)
	GetTicketByTicketID(ticketID string) (*models.Ticket, error)
	CreateTicket(ticket *models.Ticket) error
	UpdateTicketStatus(ticketID string, update TicketStatusUpdate) (*models.Ticket, error)
	ListTickets() ([]models.TicketWithCustomer, error)
	ListTicketsByTechnician(technicianID string) ([]models.TicketWithCustomer, error)
	ListTicketsByStatus(status string) ([]models.TicketWithCustomer, error)

	// NextTicketSequence returns the next per-day sequence number for
	// the given YYYYMMDD key, starting at 1. The read-modify-write is a
	// single transactional step: concurrent callers on the same key
	// never receive the same number.
	NextTicketSequence(dateKey string) (int, error)
}

func prepareUser(user *models.User, now time.Time) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
}

func prepareCustomer(customer *models.Customer, now time.Time) {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
}

func prepareTicket(ticket *models.Ticket, now time.Time) {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	if ticket.Priority == "" {
		ticket.Priority = models.PriorityMedium
	}
	if ticket.ServiceStatus == "" {
		ticket.ServiceStatus = models.StatusPending
	}
	if ticket.PaymentStatus == "" {
		ticket.PaymentStatus = models.PaymentPending
	}
	if ticket.ServiceNotes == nil {
		ticket.ServiceNotes = []models.ServiceNote{}
	}
	ticket.CompletedAt = nil
}

// applyStatusUpdate mutates the ticket per the update semantics:
// completedAt is stamped whenever the incoming status is Completed and
// left untouched otherwise; a note is appended only when both note text
// and acting technician are present. Prior notes are never rewritten.
func applyStatusUpdate(ticket *models.Ticket, update TicketStatusUpdate, now time.Time) {
	ticket.ServiceStatus = update.ServiceStatus
	if update.Priority != "" {
		ticket.Priority = update.Priority
	}
	if update.PaymentStatus != "" {
		ticket.PaymentStatus = update.PaymentStatus
	}
	if update.FinalCost != nil {
		cost := *update.FinalCost
		ticket.FinalCost = &cost
	}
	if update.TechnicianID != "" {
		ticket.AssignedTechnician = update.TechnicianID
	}
	if update.ServiceStatus == models.StatusCompleted {
		completed := now
		ticket.CompletedAt = &completed
	}
	if update.ServiceNote != "" && update.TechnicianID != "" {
		ticket.ServiceNotes = append(ticket.ServiceNotes, models.ServiceNote{
			ID:           uuid.NewString(),
			Note:         update.ServiceNote,
			TechnicianID: update.TechnicianID,
			Timestamp:    now,
			Photos:       update.Photos,
		})
	}
}
