package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/satyasricomputers/servicecenter/models"
	"github.com/satyasricomputers/servicecenter/router"
	"github.com/satyasricomputers/servicecenter/store"
	"github.com/satyasricomputers/servicecenter/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks the main flow:
// 0. Register frontdesk + technician, login both -> tokens
// 1. Frontdesk creates a ticket -> SATY-<today>-0001
// 2. Technician may not create tickets (403)
// 3. Technician picks it up: In Progress + service note
// 4. Technician sees it in the role-scoped listing
// 5. Completed with a final cost, then Delivered
// 6. Stats, reports, customers, customer message
func TestEndToEndIntegration(t *testing.T) {
	st := setupTestStore()
	r := router.SetupRouter(st)

	frontdeskToken := registerAndLoginTest(t, r, "reception1", "Lakshmi Rao", models.RoleFrontdesk)
	technicianToken := registerAndLoginTest(t, r, "tech1", "Suresh Kumar", models.RoleTechnician)

	ticketID := createTicketTest(t, r, frontdeskToken)

	createTicketForbiddenTest(t, r, technicianToken)

	startWorkTest(t, r, ticketID, technicianToken)

	listAsTechnicianTest(t, r, ticketID, technicianToken)

	completeAndDeliverTest(t, r, ticketID, technicianToken)

	statsTest(t, r, frontdeskToken, technicianToken)

	reportsTest(t, r, frontdeskToken, technicianToken)

	customersTest(t, r, frontdeskToken, technicianToken)

	sendMessageTest(t, r, ticketID, frontdeskToken)
}

// setupTestStore -> migrate models into SQLite in-memory
func setupTestStore() store.Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Ticket{},
		&models.TicketSequence{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return store.NewGormStore(db)
}

// registerAndLoginTest -> POST /api/auth/register then /api/auth/login.
// Four auth calls total across the test, under the strict limiter's
// burst of five.
func registerAndLoginTest(t *testing.T, r *gin.Engine, username, fullName, role string) string {
	regBody, _ := json.Marshal(map[string]string{
		"username":  username,
		"password":  "secret123",
		"role":      role,
		"full_name": fullName,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBuffer(regBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d, body=%s", username, w.Code, w.Body.String())
	}

	loginBody, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "secret123",
		"role":     role,
	})
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d, body=%s", username, w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Status || resp.Data.Token == "" {
		t.Fatalf("login %s: token empty, body=%s", username, w.Body.String())
	}
	return resp.Data.Token
}

// createTicketTest -> POST /api/tickets => 201, first ID of the day
func createTicketTest(t *testing.T, r *gin.Engine, token string) string {
	bodyData := map[string]interface{}{
		"customer_name":       "Ravi Teja",
		"customer_phone":      "9876543210",
		"device_type":         "Laptop",
		"device_model":        "Dell Inspiron 15",
		"issue_category":      "Screen",
		"problem_description": "Screen flickers on boot",
		"priority":            "High",
		"estimated_cost":      2500,
	}
	bodyBytes, _ := json.Marshal(bodyData)

	req := httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("createTicketTest: expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			TicketID      string `json:"ticket_id"`
			ServiceStatus string `json:"service_status"`
			Customer      struct {
				Name  string `json:"name"`
				Phone string `json:"phone"`
			} `json:"customer"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Status {
		t.Fatalf("createTicketTest: status=false, body=%s", w.Body.String())
	}

	wantID := "SATY-" + utils.DateKey(time.Now()) + "-0001"
	if resp.Data.TicketID != wantID {
		t.Fatalf("createTicketTest: expected ticket ID %s, got %s", wantID, resp.Data.TicketID)
	}
	if resp.Data.ServiceStatus != models.StatusPending {
		t.Fatalf("createTicketTest: expected status 'Pending', got %s", resp.Data.ServiceStatus)
	}
	if resp.Data.Customer.Phone != "9876543210" {
		t.Fatalf("createTicketTest: customer not joined, body=%s", w.Body.String())
	}
	return resp.Data.TicketID
}

// createTicketForbiddenTest -> technicians cannot register tickets
func createTicketForbiddenTest(t *testing.T, r *gin.Engine, token string) {
	bodyBytes, _ := json.Marshal(map[string]interface{}{
		"customer_name":       "X",
		"customer_phone":      "9000000000",
		"device_type":         "Laptop",
		"issue_category":      "Other",
		"problem_description": "x",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/tickets", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("createTicketForbiddenTest: expected 403, got %d, body=%s", w.Code, w.Body.String())
	}
}

// startWorkTest -> PATCH status => In Progress, note recorded, ticket
// assigned to the acting technician
func startWorkTest(t *testing.T, r *gin.Engine, ticketID, token string) {
	bodyBytes, _ := json.Marshal(map[string]interface{}{
		"service_status": models.StatusInProgress,
		"service_note":   "Reseated display cable, testing panel",
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/tickets/"+ticketID+"/status", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("startWorkTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			ServiceStatus          string `json:"service_status"`
			AssignedTechnicianName string `json:"assigned_technician_name"`
			ServiceNotes           []struct {
				Note string `json:"note"`
			} `json:"service_notes"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.ServiceStatus != models.StatusInProgress {
		t.Fatalf("startWorkTest: expected 'In Progress', got %s", resp.Data.ServiceStatus)
	}
	if resp.Data.AssignedTechnicianName != "Suresh Kumar" {
		t.Fatalf("startWorkTest: expected technician name, got %q", resp.Data.AssignedTechnicianName)
	}
	if len(resp.Data.ServiceNotes) != 1 || resp.Data.ServiceNotes[0].Note != "Reseated display cable, testing panel" {
		t.Fatalf("startWorkTest: note not recorded, body=%s", w.Body.String())
	}
}

// listAsTechnicianTest -> GET /api/tickets scoped to own assignments
func listAsTechnicianTest(t *testing.T, r *gin.Engine, ticketID, token string) {
	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("listAsTechnicianTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool `json:"status"`
		Data   []struct {
			TicketID string `json:"ticket_id"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 1 || resp.Data[0].TicketID != ticketID {
		t.Fatalf("listAsTechnicianTest: expected [%s], body=%s", ticketID, w.Body.String())
	}
}

// completeAndDeliverTest -> Completed stamps completed_at, Delivered
// keeps it
func completeAndDeliverTest(t *testing.T, r *gin.Engine, ticketID, token string) {
	bodyBytes, _ := json.Marshal(map[string]interface{}{
		"service_status": models.StatusCompleted,
		"final_cost":     2800,
		"payment_status": models.PaymentPaid,
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/tickets/"+ticketID+"/status", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("completeAndDeliverTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			CompletedAt *time.Time `json:"completed_at"`
			FinalCost   *float64   `json:"final_cost"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.CompletedAt == nil {
		t.Fatalf("completeAndDeliverTest: completed_at not stamped, body=%s", w.Body.String())
	}
	if resp.Data.FinalCost == nil || *resp.Data.FinalCost != 2800 {
		t.Fatalf("completeAndDeliverTest: final cost not stored, body=%s", w.Body.String())
	}
	completedAt := *resp.Data.CompletedAt

	bodyBytes, _ = json.Marshal(map[string]interface{}{
		"service_status": models.StatusDelivered,
	})
	req = httptest.NewRequest(http.MethodPatch, "/api/tickets/"+ticketID+"/status", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("completeAndDeliverTest deliver: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.CompletedAt == nil || !resp.Data.CompletedAt.Equal(completedAt) {
		t.Fatalf("completeAndDeliverTest: delivery changed completed_at, body=%s", w.Body.String())
	}
}

// statsTest -> frontdesk gets the shared stats, technician gets the
// extended payload with own-workload counters
func statsTest(t *testing.T, r *gin.Engine, frontdeskToken, technicianToken string) {
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+frontdeskToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("statsTest frontdesk: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var fdResp struct {
		Data struct {
			TotalTickets     int     `json:"total_tickets"`
			DeliveredTickets int     `json:"delivered_tickets"`
			MonthlyRevenue   float64 `json:"monthly_revenue"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &fdResp)
	if fdResp.Data.TotalTickets != 1 || fdResp.Data.DeliveredTickets != 1 {
		t.Fatalf("statsTest frontdesk: unexpected counts, body=%s", w.Body.String())
	}
	if fdResp.Data.MonthlyRevenue != 2800 {
		t.Fatalf("statsTest frontdesk: expected revenue 2800, got %v", fdResp.Data.MonthlyRevenue)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer "+technicianToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("statsTest technician: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var techResp struct {
		Data struct {
			AssignedToMe     int `json:"assigned_to_me"`
			MyCompletedToday int `json:"my_completed_today"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &techResp)
	if techResp.Data.AssignedToMe != 1 || techResp.Data.MyCompletedToday != 1 {
		t.Fatalf("statsTest technician: unexpected counters, body=%s", w.Body.String())
	}
}

// reportsTest -> frontdesk reads aggregates, technician is rejected
func reportsTest(t *testing.T, r *gin.Engine, frontdeskToken, technicianToken string) {
	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer "+frontdeskToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reportsTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Summary struct {
				TotalRevenue float64 `json:"total_revenue"`
			} `json:"summary"`
			Revenue struct {
				Today float64 `json:"today"`
			} `json:"revenue"`
			TopIssues []struct {
				Category string `json:"category"`
				Count    int    `json:"count"`
			} `json:"top_issues"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Summary.TotalRevenue != 2800 || resp.Data.Revenue.Today != 2800 {
		t.Fatalf("reportsTest: unexpected revenue, body=%s", w.Body.String())
	}
	if len(resp.Data.TopIssues) != 1 || resp.Data.TopIssues[0].Category != "Screen" {
		t.Fatalf("reportsTest: unexpected top issues, body=%s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer "+technicianToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("reportsTest technician: expected 403, got %d", w.Code)
	}
}

// customersTest -> frontdesk lists the customer created during intake
func customersTest(t *testing.T, r *gin.Engine, frontdeskToken, technicianToken string) {
	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer "+frontdeskToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("customersTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data) != 1 || resp.Data[0].Phone != "9876543210" {
		t.Fatalf("customersTest: expected one customer, body=%s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer "+technicianToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("customersTest technician: expected 403, got %d", w.Code)
	}
}

// sendMessageTest -> POST /api/communication/send over the log notifier
func sendMessageTest(t *testing.T, r *gin.Engine, ticketID, token string) {
	bodyBytes, _ := json.Marshal(map[string]string{
		"ticket_id":    ticketID,
		"message_type": "sms",
		"message":      "Your laptop is ready for pickup",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/communication/send", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sendMessageTest: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Status || resp.Message != "SMS sent successfully to Ravi Teja" {
		t.Fatalf("sendMessageTest: unexpected response, body=%s", w.Body.String())
	}
}
