package models

import "time"

// Service status lifecycle of a repair ticket.
const (
	StatusPending         = "Pending"
	StatusInProgress      = "In Progress"
	StatusWaitingForParts = "Waiting for Parts"
	StatusTesting         = "Testing"
	StatusCompleted       = "Completed"
	StatusDelivered       = "Delivered"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

const (
	PaymentPending     = "Pending"
	PaymentAdvancePaid = "Advance Paid"
	PaymentPaid        = "Paid"
)

// ServiceNote is an append-only technician annotation embedded in the
// ticket; notes are never edited or removed once written.
type ServiceNote struct {
	ID           string    `json:"id"`
	Note         string    `json:"note"`
	TechnicianID string    `json:"technician_id"`
	Timestamp    time.Time `json:"timestamp"`
	Photos       []string  `json:"photos,omitempty"`
}

type Ticket struct {
	ID                 string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	TicketID           string        `gorm:"type:varchar(30);uniqueIndex;not null" json:"ticket_id"`
	CustomerID         string        `gorm:"type:varchar(36);index;not null" json:"customer_id"`
	DeviceType         string        `gorm:"type:varchar(100);not null" json:"device_type"`
	DeviceModel        string        `gorm:"type:varchar(255)" json:"device_model,omitempty"`
	SerialNumber       string        `gorm:"type:varchar(100)" json:"serial_number,omitempty"`
	PurchaseDate       string        `gorm:"type:varchar(20)" json:"purchase_date,omitempty"`
	IssueCategory      string        `gorm:"type:varchar(100);not null" json:"issue_category"`
	ProblemDescription string        `gorm:"type:text;not null" json:"problem_description"`
	Priority           string        `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	ServiceStatus      string        `gorm:"type:varchar(30);not null;default:'Pending'" json:"service_status"`
	PaymentStatus      string        `gorm:"type:varchar(20);not null;default:'Pending'" json:"payment_status"`
	EstimatedCost      *float64      `gorm:"type:decimal(10,2)" json:"estimated_cost,omitempty"`
	FinalCost          *float64      `gorm:"type:decimal(10,2)" json:"final_cost,omitempty"`
	AssignedTechnician string        `gorm:"type:varchar(36);index" json:"assigned_technician,omitempty"`
	ServiceNotes       []ServiceNote `gorm:"serializer:json" json:"service_notes"`
	CreatedAt          time.Time     `gorm:"not null;index" json:"created_at"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
}

// TicketWithCustomer is the read shape returned by list/detail
// operations: the ticket joined with its owning customer and, when the
// assigned technician still resolves, that technician's display name.
type TicketWithCustomer struct {
	Ticket
	Customer               Customer `json:"customer"`
	AssignedTechnicianName string   `json:"assigned_technician_name,omitempty"`
}

// TicketSequence is the per-day counter behind ticket ID allocation.
// One row per date key, incremented once per ticket created that day.
type TicketSequence struct {
	Date     string `gorm:"type:varchar(8);primaryKey"`
	Sequence int    `gorm:"not null"`
}

func ValidServiceStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusWaitingForParts,
		StatusTesting, StatusCompleted, StatusDelivered:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidPaymentStatus(p string) bool {
	switch p {
	case PaymentPending, PaymentAdvancePaid, PaymentPaid:
		return true
	}
	return false
}
