package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

func reportFixture() *ReportService {
	paid := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)
	students := &mockStudentRepo{students: map[string]models.Student{
		"stu-1": {ID: "stu-1", FullName: "Jane Doe", Email: "jane@example.com", Status: models.StudentStatusEnrolled},
	}}
	leads := &mockLeadRepo{leads: map[string]models.Lead{
		"lead-1": {ID: "lead-1", LeadNumber: "LEAD-0001", FullName: "Sam Lee", Source: "website", Status: models.LeadStatusNew},
	}}
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"pay-1": {ID: "pay-1", StudentID: "stu-1", AmountCents: 150000, Currency: "AUD", Status: models.PaymentStatusPaid, Reference: "INV-100", PaidAt: &paid},
	}}
	return NewReportService(students, leads, payments, zap.NewNop())
}

func TestReportServiceStudentsCSV(t *testing.T) {
	svc := reportFixture()

	file, err := svc.Generate(context.Background(), ReportKindStudents, ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Content)
	assert.Contains(t, body, "Full Name,Email,Phone,Status,Enrolled")
	assert.Contains(t, body, "Jane Doe")
}

func TestReportServicePaymentsCSVFormatsAmount(t *testing.T) {
	svc := reportFixture()

	file, err := svc.Generate(context.Background(), ReportKindPayments, ReportFormatCSV)
	require.NoError(t, err)
	body := string(file.Content)
	assert.Contains(t, body, "1500.00")
	assert.Contains(t, body, "2025-07-14")
}

func TestReportServiceLeadsPDF(t *testing.T) {
	svc := reportFixture()

	file, err := svc.Generate(context.Background(), ReportKindLeads, ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestReportServiceRejectsUnknownKindAndFormat(t *testing.T) {
	svc := reportFixture()

	_, err := svc.Generate(context.Background(), "invoices", ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Generate(context.Background(), ReportKindStudents, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
