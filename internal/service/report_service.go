package service

import (
	"context"
	"fmt"
	"time"

	"github.com/NicoPonziani/ExcelUtility/internal/domain"
	"github.com/NicoPonziani/ExcelUtility/internal/logger"
	"github.com/NicoPonziani/ExcelUtility/pkg/exceltab"
)

// templateStartRow skips the merged title row when reading a filled-in
// template back.
const templateStartRow = 1

const summarySheet = "Summary"

type ReportService interface {
	// ExportWorkbook renders the full report: general block, expense
	// table with totals, and a per-region summary on its own sheet.
	ExportWorkbook(ctx context.Context, filter domain.ExpenseFilter) ([]byte, error)
	// ExportTemplate renders the plain expense table meant to be
	// filled in and imported back.
	ExportTemplate(ctx context.Context, filter domain.ExpenseFilter) ([]byte, error)
	ExportCSV(ctx context.Context, filter domain.ExpenseFilter) ([]byte, error)
	// Import reads a filled-in template, persists the valid rows and
	// returns the workbook annotated with the outcome of each row.
	Import(ctx context.Context, file []byte) (*ImportResult, error)
}

type ImportResult struct {
	Imported  int    `json:"imported"`
	Rejected  int    `json:"rejected"`
	Annotated []byte `json:"-"`
}

type reportService struct {
	repo    domain.ExpenseRepository
	opts    exceltab.Options
	company string
}

func NewReportService(repo domain.ExpenseRepository, opts exceltab.Options, company string) ReportService {
	return &reportService{repo: repo, opts: opts, company: company}
}

func (s *reportService) ExportWorkbook(ctx context.Context, filter domain.ExpenseFilter) ([]byte, error) {
	expenses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	logger.InfoLog(ctx, "exporting expense report with %d rows", len(expenses))

	report := &exceltab.Report{
		General: domain.ReportHeader{
			Company:     s.company,
			Period:      periodLabel(filter),
			GeneratedOn: time.Now(),
		},
		GeneralSpecials: []exceltab.SpecialField{
			{Label: "Grand total", Order: 0, Columns: []string{"Amount"}},
		},
		Tables: []*exceltab.Table{{
			Rows: expenses,
			Specials: []exceltab.SpecialField{
				{Label: "Total", Order: 0, Operation: exceltab.OpSum, Columns: []string{"Amount"}},
			},
			Pivot: &exceltab.Pivot{
				Sheet:      summarySheet,
				Title:      "Amounts by region",
				Conditions: []string{"Region"},
				Values:     []string{"Amount"},
				Special:    &exceltab.SpecialField{Label: "Total"},
			},
		}},
	}
	return exceltab.NewBuilder(s.opts).GenerateReport(report)
}

func (s *reportService) ExportTemplate(ctx context.Context, filter domain.ExpenseFilter) ([]byte, error) {
	expenses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return exceltab.NewBuilder(s.opts).GenerateSimple(expenses)
}

func (s *reportService) ExportCSV(ctx context.Context, filter domain.ExpenseFilter) ([]byte, error) {
	expenses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return exceltab.GenerateCSV(expenses)
}

func (s *reportService) Import(ctx context.Context, file []byte) (*ImportResult, error) {
	cols, err := exceltab.ColumnsFor(domain.Expense{})
	if err != nil {
		return nil, err
	}
	opts := exceltab.ImportOptions{StartRow: templateStartRow}
	expenses, err := exceltab.ReadRecords[domain.Expense](file, cols, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read expense template: %w", err)
	}

	var valid []domain.Expense
	var feedback []exceltab.RowFeedback
	// data rows follow the title and header rows
	firstDataRow := templateStartRow + 2
	for i, e := range expenses {
		row := firstDataRow + i
		if fb, ok := validateExpense(e, row); !ok {
			feedback = append(feedback, fb)
			continue
		}
		valid = append(valid, e)
		feedback = append(feedback, exceltab.RowFeedback{Row: row, Status: exceltab.StatusOK})
	}

	if err := s.repo.BulkInsert(ctx, valid); err != nil {
		return nil, fmt.Errorf("failed to store expenses: %w", err)
	}
	logger.InfoLog(ctx, "imported %d of %d expense rows", len(valid), len(expenses))

	annotated, err := exceltab.Annotate(file, cols, feedback, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to annotate template: %w", err)
	}
	return &ImportResult{
		Imported:  len(valid),
		Rejected:  len(expenses) - len(valid),
		Annotated: annotated,
	}, nil
}

func validateExpense(e domain.Expense, row int) (exceltab.RowFeedback, bool) {
	if e.Amount <= 0 {
		return exceltab.RowFeedback{
			Row:     row,
			Column:  "Amount",
			Status:  exceltab.StatusError,
			Message: "amount must be positive",
		}, false
	}
	if !e.IncurredOn.IsZero() && e.IncurredOn.After(time.Now()) {
		return exceltab.RowFeedback{
			Row:     row,
			Column:  "Date",
			Status:  exceltab.StatusError,
			Message: "date is in the future",
		}, false
	}
	return exceltab.RowFeedback{}, true
}

func periodLabel(filter domain.ExpenseFilter) string {
	switch {
	case !filter.From.IsZero() && !filter.To.IsZero():
		return filter.From.Format("02/01/2006") + " - " + filter.To.Format("02/01/2006")
	case !filter.From.IsZero():
		return "from " + filter.From.Format("02/01/2006")
	case !filter.To.IsZero():
		return "until " + filter.To.Format("02/01/2006")
	}
	return "all time"
}
