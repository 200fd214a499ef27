package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satyasricomputers/servicecenter/models"
	"github.com/satyasricomputers/servicecenter/utils"
)

// Operations gated by role.
const (
	OpCreateTicket       = "ticket:create"
	OpViewTicket         = "ticket:view"
	OpListTickets        = "ticket:list"
	OpUpdateTicketStatus = "ticket:update-status"
	OpListCustomers      = "customer:list"
	OpCreateCustomer     = "customer:create"
	OpViewStats          = "stats:view"
	OpViewReports        = "reports:view"
	OpSendMessage        = "message:send"
)

// capabilities is the single place role permissions live. Frontdesk
// registers tickets/customers and reads reports; technicians work
// tickets. Field-level restrictions inside an update (who may flip
// which status) are the UI contract, not re-checked here.
var capabilities = map[string]map[string]bool{
	models.RoleFrontdesk: {
		OpCreateTicket:       true,
		OpViewTicket:         true,
		OpListTickets:        true,
		OpUpdateTicketStatus: true,
		OpListCustomers:      true,
		OpCreateCustomer:     true,
		OpViewStats:          true,
		OpViewReports:        true,
		OpSendMessage:        true,
	},
	models.RoleTechnician: {
		OpViewTicket:         true,
		OpListTickets:        true,
		OpUpdateTicketStatus: true,
		OpViewStats:          true,
	},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role, operation string) bool {
	return capabilities[role][operation]
}

// RequireCapability rejects the request before any store access when
// the caller's role lacks the operation.
func RequireCapability(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if !Allowed(role, operation) {
			utils.RespondError(c, http.StatusForbidden, errors.New("insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}
