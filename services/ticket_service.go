package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/satyasricomputers/servicecenter/models"
	"github.com/satyasricomputers/servicecenter/store"
	"github.com/satyasricomputers/servicecenter/utils"
)

// ErrValidation marks rejected input; nothing has been written when it
// is returned.
var ErrValidation = errors.New("invalid ticket data")

// CreateTicketInput carries the intake form: the customer contact
// fields plus the device and issue description.
type CreateTicketInput struct {
	CustomerName    string   `json:"customer_name" binding:"required"`
	CustomerPhone   string   `json:"customer_phone" binding:"required"`
	CustomerEmail   string   `json:"customer_email"`
	CustomerAddress string   `json:"customer_address"`
	DeviceType      string   `json:"device_type" binding:"required"`
	DeviceModel     string   `json:"device_model"`
	SerialNumber    string   `json:"serial_number"`
	PurchaseDate    string   `json:"purchase_date"`
	IssueCategory   string   `json:"issue_category" binding:"required"`
	ProblemDesc     string   `json:"problem_description" binding:"required"`
	Priority        string   `json:"priority"`
	EstimatedCost   *float64 `json:"estimated_cost"`
}

// TicketService orchestrates ticket creation and status updates over
// the store: customer lookup-or-create, sequence allocation, ticket ID
// assignment, and read-shape resolution.
type TicketService struct {
	Store store.Store
	Now   func() time.Time
}

func NewTicketService(st store.Store) *TicketService {
	return &TicketService{
		Store: st,
		Now:   time.Now,
	}
}

func (s *TicketService) Create(input CreateTicketInput) (*models.TicketWithCustomer, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	// reuse the customer on file for this phone number, otherwise
	// register a new one
	customer, err := s.Store.GetCustomerByPhone(input.CustomerPhone)
	if errors.Is(err, store.ErrNotFound) {
		customer = &models.Customer{
			Name:    input.CustomerName,
			Phone:   input.CustomerPhone,
			Email:   input.CustomerEmail,
			Address: input.CustomerAddress,
		}
		if err := s.Store.CreateCustomer(customer); err != nil {
			return nil, err
		}
		utils.InfoLogger.Printf("New customer registered: %s (%s)", customer.Name, customer.Phone)
	} else if err != nil {
		return nil, err
	}

	now := s.Now()
	sequence, err := s.Store.NextTicketSequence(utils.DateKey(now))
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		TicketID:           utils.FormatTicketID(now, sequence),
		CustomerID:         customer.ID,
		DeviceType:         input.DeviceType,
		DeviceModel:        input.DeviceModel,
		SerialNumber:       input.SerialNumber,
		PurchaseDate:       input.PurchaseDate,
		IssueCategory:      input.IssueCategory,
		ProblemDescription: input.ProblemDesc,
		Priority:           input.Priority,
		EstimatedCost:      input.EstimatedCost,
		CreatedAt:          now,
	}
	if err := s.Store.CreateTicket(ticket); err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Ticket %s created for customer %s", ticket.TicketID, customer.ID)

	return &models.TicketWithCustomer{
		Ticket:   *ticket,
		Customer: *customer,
	}, nil
}

// UpdateStatus applies a status update and returns the ticket joined
// with its owning customer. Role restrictions are the boundary layer's
// responsibility; the service validates field values only.
func (s *TicketService) UpdateStatus(ticketID string, update store.TicketStatusUpdate) (*models.TicketWithCustomer, error) {
	if err := validateStatusUpdate(update); err != nil {
		return nil, err
	}

	ticket, err := s.Store.UpdateTicketStatus(ticketID, update)
	if err != nil {
		return nil, err
	}

	customer, err := s.Store.GetCustomer(ticket.CustomerID)
	if err != nil {
		return nil, err
	}

	result := &models.TicketWithCustomer{
		Ticket:   *ticket,
		Customer: *customer,
	}
	if ticket.AssignedTechnician != "" {
		if technician, err := s.Store.GetUser(ticket.AssignedTechnician); err == nil {
			result.AssignedTechnicianName = technician.FullName
		}
	}
	return result, nil
}

// Get resolves a ticket by its external identifier, joined with its
// customer and the technician display name when one is assigned.
func (s *TicketService) Get(ticketID string) (*models.TicketWithCustomer, error) {
	ticket, err := s.Store.GetTicketByTicketID(ticketID)
	if err != nil {
		return nil, err
	}

	customer, err := s.Store.GetCustomer(ticket.CustomerID)
	if err != nil {
		return nil, err
	}

	result := &models.TicketWithCustomer{
		Ticket:   *ticket,
		Customer: *customer,
	}
	if ticket.AssignedTechnician != "" {
		// a disabled or deleted technician must not break the ticket;
		// the name just stays empty
		if technician, err := s.Store.GetUser(ticket.AssignedTechnician); err == nil {
			result.AssignedTechnicianName = technician.FullName
		}
	}
	return result, nil
}

func validateCreateInput(input CreateTicketInput) error {
	switch {
	case input.CustomerName == "":
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	case input.CustomerPhone == "":
		return fmt.Errorf("%w: customer phone is required", ErrValidation)
	case input.DeviceType == "":
		return fmt.Errorf("%w: device type is required", ErrValidation)
	case input.IssueCategory == "":
		return fmt.Errorf("%w: issue category is required", ErrValidation)
	case input.ProblemDesc == "":
		return fmt.Errorf("%w: problem description is required", ErrValidation)
	}
	if input.Priority != "" && !models.ValidPriority(input.Priority) {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, input.Priority)
	}
	return nil
}

func validateStatusUpdate(update store.TicketStatusUpdate) error {
	if !models.ValidServiceStatus(update.ServiceStatus) {
		return fmt.Errorf("%w: unknown service status %q", ErrValidation, update.ServiceStatus)
	}
	if update.Priority != "" && !models.ValidPriority(update.Priority) {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, update.Priority)
	}
	if update.PaymentStatus != "" && !models.ValidPaymentStatus(update.PaymentStatus) {
		return fmt.Errorf("%w: unknown payment status %q", ErrValidation, update.PaymentStatus)
	}
	return nil
}
