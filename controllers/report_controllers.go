package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"

	"github.com/satyasricomputers/servicecenter/models"
	"github.com/satyasricomputers/servicecenter/services"
	"github.com/satyasricomputers/servicecenter/utils"
)

type ReportController struct {
	Reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{Reports: reports}
}

// GetStats returns the dashboard counters. Technicians get their own
// workload counters on top of the shared numbers.
func (rc *ReportController) GetStats(c *gin.Context) {
	if c.GetString("role") == models.RoleTechnician {
		stats, err := rc.Reports.StatsForTechnician(c.GetString("user_id"))
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
		return
	}

	stats, err := rc.Reports.Stats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// GetReports returns the full reporting aggregate.
func (rc *ReportController) GetReports(c *gin.Context) {
	reports, err := rc.Reports.Reports()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reports", reports)
}

// ExportPDF renders the reporting aggregate as a downloadable PDF.
func (rc *ReportController) ExportPDF(c *gin.Context) {
	reports, err := rc.Reports.Reports()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Satyasri Computers - Service Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	summaryRows := [][2]string{
		{"Total tickets", fmt.Sprintf("%d", reports.Summary.TotalTickets)},
		{"Total customers", fmt.Sprintf("%d", reports.Summary.TotalCustomers)},
		{"Total revenue", fmt.Sprintf("%.2f", reports.Summary.TotalRevenue)},
		{"Avg resolution (days)", fmt.Sprintf("%d", reports.Summary.AvgResolutionDays)},
	}
	for _, row := range summaryRows {
		pdf.Cell(60, 7, row[0])
		pdf.Cell(0, 7, row[1])
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Status Breakdown")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	statusRows := [][2]string{
		{models.StatusPending, fmt.Sprintf("%d", reports.StatusBreakdown.Pending)},
		{models.StatusInProgress, fmt.Sprintf("%d", reports.StatusBreakdown.InProgress)},
		{models.StatusWaitingForParts, fmt.Sprintf("%d", reports.StatusBreakdown.WaitingForParts)},
		{models.StatusTesting, fmt.Sprintf("%d", reports.StatusBreakdown.Testing)},
		{models.StatusCompleted, fmt.Sprintf("%d", reports.StatusBreakdown.Completed)},
		{models.StatusDelivered, fmt.Sprintf("%d", reports.StatusBreakdown.Delivered)},
	}
	for _, row := range statusRows {
		pdf.Cell(60, 7, row[0])
		pdf.Cell(0, 7, row[1])
		pdf.Ln(7)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Top Issues")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, issue := range reports.TopIssues {
		pdf.Cell(60, 7, issue.Category)
		pdf.Cell(0, 7, fmt.Sprintf("%d", issue.Count))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="service-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
