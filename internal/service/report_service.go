package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
	"github.com/nurse-assist/nai-admin-api/pkg/export"
)

// Report formats and kinds accepted by the report endpoints.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"

	ReportKindStudents = "students"
	ReportKindLeads    = "leads"
	ReportKindPayments = "payments"
)

type reportStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type reportLeadLister interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error)
}

type reportPaymentLister interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService renders printable exports of the primary collections.
type ReportService struct {
	students reportStudentLister
	leads    reportLeadLister
	payments reportPaymentLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(students reportStudentLister, leads reportLeadLister, payments reportPaymentLister, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students: students,
		leads:    leads,
		payments: payments,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

// Generate renders the named report in the requested format.
func (s *ReportService) Generate(ctx context.Context, kind, format string) (*ReportFile, error) {
	var (
		dataset export.Dataset
		title   string
		err     error
	)
	switch kind {
	case ReportKindStudents:
		dataset, err = s.studentDataset(ctx)
		title = "Student Roster"
	case ReportKindLeads:
		dataset, err = s.leadDataset(ctx)
		title = "Lead Pipeline"
	case ReportKindPayments:
		dataset, err = s.paymentDataset(ctx)
		title = "Payments Summary"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report kind %q", kind))
	}
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format("20060102-150405")
	switch format {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("%s-%s.csv", kind, stamp),
			ContentType: "text/csv",
			Content:     payload,
		}, nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("%s-%s.pdf", kind, stamp),
			ContentType: "application/pdf",
			Content:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

// reportPageSize is large enough to cover the full collection in one query.
const reportPageSize = 10000

func (s *ReportService) studentDataset(ctx context.Context) (export.Dataset, error) {
	students, _, err := s.students.List(ctx, models.StudentFilter{Page: 1, PageSize: reportPageSize})
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for report")
	}
	dataset := export.Dataset{
		Headers: []string{"Full Name", "Email", "Phone", "Status", "Enrolled"},
	}
	for _, student := range students {
		enrolled := ""
		if student.EnrollmentDate != nil {
			enrolled = student.EnrollmentDate.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Full Name": student.FullName,
			"Email":     student.Email,
			"Phone":     student.Phone,
			"Status":    student.Status,
			"Enrolled":  enrolled,
		})
	}
	return dataset, nil
}

func (s *ReportService) leadDataset(ctx context.Context) (export.Dataset, error) {
	leads, _, err := s.leads.List(ctx, models.LeadFilter{Page: 1, PageSize: reportPageSize})
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leads for report")
	}
	dataset := export.Dataset{
		Headers: []string{"Lead", "Full Name", "Email", "Source", "Status"},
	}
	for _, lead := range leads {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Lead":      lead.LeadNumber,
			"Full Name": lead.FullName,
			"Email":     lead.Email,
			"Source":    lead.Source,
			"Status":    lead.Status,
		})
	}
	return dataset, nil
}

func (s *ReportService) paymentDataset(ctx context.Context) (export.Dataset, error) {
	payments, _, err := s.payments.List(ctx, models.PaymentFilter{Page: 1, PageSize: reportPageSize})
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments for report")
	}
	dataset := export.Dataset{
		Headers: []string{"Reference", "Student", "Amount", "Currency", "Status", "Paid At"},
	}
	for _, payment := range payments {
		paidAt := ""
		if payment.PaidAt != nil {
			paidAt = payment.PaidAt.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Reference": payment.Reference,
			"Student":   payment.StudentID,
			"Amount":    strconv.FormatFloat(float64(payment.AmountCents)/100, 'f', 2, 64),
			"Currency":  payment.Currency,
			"Status":    payment.Status,
			"Paid At":   paidAt,
		})
	}
	return dataset, nil
}
