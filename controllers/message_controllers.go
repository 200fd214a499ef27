package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/satyasricomputers/servicecenter/events"
	"github.com/satyasricomputers/servicecenter/services"
	"github.com/satyasricomputers/servicecenter/store"
	"github.com/satyasricomputers/servicecenter/utils"
)

// MessageController sends ticket-related messages to the customer on
// file, through whatever Notifier is wired in.
type MessageController struct {
	Store    store.Store
	Notifier services.Notifier
}

func NewMessageController(st store.Store, notifier services.Notifier) *MessageController {
	return &MessageController{Store: st, Notifier: notifier}
}

func (mc *MessageController) SendMessage(c *gin.Context) {
	type reqBody struct {
		TicketID    string `json:"ticket_id" binding:"required"`
		MessageType string `json:"message_type" binding:"required"`
		Message     string `json:"message" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	channel := services.Channel(req.MessageType)
	if !services.ValidChannel(channel) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("message_type must be sms or whatsapp"))
		return
	}

	ticket, err := mc.Store.GetTicketByTicketID(req.TicketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("ticket not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	customer, err := mc.Store.GetCustomer(ticket.CustomerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := mc.Notifier.Send(customer.Phone, channel, req.Message); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastStaffNotification(
		fmt.Sprintf("%s sent to %s for ticket %s", strings.ToUpper(req.MessageType), customer.Name, ticket.TicketID))

	utils.RespondJSON(c, http.StatusOK,
		fmt.Sprintf("%s sent successfully to %s", strings.ToUpper(req.MessageType), customer.Name),
		nil)
}
