package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satyasricomputers/servicecenter/models"
	"github.com/satyasricomputers/servicecenter/store"
	"github.com/satyasricomputers/servicecenter/utils"
)

type CustomerController struct {
	Store store.Store
}

func NewCustomerController(st store.Store) *CustomerController {
	return &CustomerController{Store: st}
}

// GetAllCustomers lists the directory, newest first.
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	customers, err := cc.Store.ListCustomers()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// CreateCustomer registers a customer directly, without a ticket.
// No phone dedup happens here; that is the ticket flow's concern.
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	type reqBody struct {
		Name    string `json:"name" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
		Email   string `json:"email"`
		Address string `json:"address"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer := models.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}

	if err := cc.Store.CreateCustomer(&customer); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New customer created (ID=%s, phone=%s)", customer.ID, customer.Phone)

	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}
