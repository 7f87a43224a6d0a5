package dto

import "github.com/nurse-assist/nai-admin-api/internal/models"

// DashboardSummaryResponse carries the aggregate counts rendered by the
// admin dashboard charts.
type DashboardSummaryResponse struct {
	TotalStudents    int                          `json:"total_students"`
	TotalCourses     int                          `json:"total_courses"`
	TotalLeads       int                          `json:"total_leads"`
	TotalReferrals   int                          `json:"total_referrals"`
	TotalPayments    int                          `json:"total_payments"`
	StudentsByStatus []models.StatusCount         `json:"students_by_status"`
	LeadsByStatus    []models.StatusCount         `json:"leads_by_status"`
	LeadsBySource    []models.SourceCount         `json:"leads_by_source"`
	PaymentsByStatus []models.PaymentStatusTotal  `json:"payments_by_status"`
	RevenueByMonth   []models.PaymentMonthlyTotal `json:"revenue_by_month"`
}
