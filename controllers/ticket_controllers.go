package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satyasricomputers/servicecenter/events"
	"github.com/satyasricomputers/servicecenter/models"
	"github.com/satyasricomputers/servicecenter/services"
	"github.com/satyasricomputers/servicecenter/store"
	"github.com/satyasricomputers/servicecenter/utils"
)

type TicketController struct {
	Service *services.TicketService
	Store   store.Store
}

func NewTicketController(service *services.TicketService, st store.Store) *TicketController {
	return &TicketController{Service: service, Store: st}
}

// CreateTicket registers a repair job: reuses or creates the customer,
// allocates the day's next ticket ID, and stores the ticket.
func (tc *TicketController) CreateTicket(c *gin.Context) {
	var input services.CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ticket, err := tc.Service.Create(input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.ErrorLogger.Printf("Error creating ticket: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTicketCreated(*ticket)

	utils.RespondJSON(c, http.StatusCreated, "Ticket created", ticket)
}

// GetTicket resolves one ticket by its external identifier.
func (tc *TicketController) GetTicket(c *gin.Context) {
	ticket, err := tc.Service.Get(c.Param("ticket_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("ticket not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Ticket detail", ticket)
}

// GetAllTickets lists tickets role-scoped: technicians see only their
// own assignments, frontdesk sees everything, optionally filtered by
// service status.
func (tc *TicketController) GetAllTickets(c *gin.Context) {
	var (
		tickets []models.TicketWithCustomer
		err     error
	)

	if c.GetString("role") == models.RoleTechnician {
		tickets, err = tc.Store.ListTicketsByTechnician(c.GetString("user_id"))
	} else if status := c.Query("status"); status != "" {
		if !models.ValidServiceStatus(status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("unknown service status"))
			return
		}
		tickets, err = tc.Store.ListTicketsByStatus(status)
	} else {
		tickets, err = tc.Store.ListTickets()
	}

	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of tickets", tickets)
}

// UpdateTicketStatus applies a status update on behalf of the caller.
// Which fields each role may set is enforced at the UI boundary; a
// technician actor becomes the assigned technician.
func (tc *TicketController) UpdateTicketStatus(c *gin.Context) {
	type reqBody struct {
		ServiceStatus string   `json:"service_status" binding:"required"`
		Priority      string   `json:"priority"`
		PaymentStatus string   `json:"payment_status"`
		FinalCost     *float64 `json:"final_cost"`
		ServiceNote   string   `json:"service_note"`
		Photos        []string `json:"photos"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// only a technician actor claims the ticket; a frontdesk update
	// (say, payment status) must not reassign it
	var technicianID string
	if c.GetString("role") == models.RoleTechnician {
		technicianID = c.GetString("user_id")
	}

	ticket, err := tc.Service.UpdateStatus(c.Param("ticket_id"), store.TicketStatusUpdate{
		ServiceStatus: req.ServiceStatus,
		Priority:      req.Priority,
		PaymentStatus: req.PaymentStatus,
		FinalCost:     req.FinalCost,
		ServiceNote:   req.ServiceNote,
		Photos:        req.Photos,
		TechnicianID:  technicianID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, store.ErrNotFound):
			utils.RespondError(c, http.StatusNotFound, errors.New("ticket not found"))
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	events.BroadcastTicketUpdated(*ticket)

	utils.RespondJSON(c, http.StatusOK, "Ticket updated", ticket)
}
