package domain

import (
	"context"
	"time"
)

// Expense is one cost line of an expense report. The excel tags drive
// both the workbook export and the import of filled-in templates; the
// aliases match the Italian column titles legacy documents still use.
type Expense struct {
	ID          int64     `json:"id"`
	Description string    `json:"description" excel:"label=Description,order=0,required,alias=Descrizione"`
	Region      string    `json:"region" excel:"label=Region,order=1,alias=Area"`
	Category    string    `json:"category" excel:"label=Category,order=2,alias=Categoria"`
	Amount      float64   `json:"amount" excel:"label=Amount,order=3,category=currency,required,alias=Importo"`
	VATRate     float64   `json:"vat_rate" excel:"label=VAT rate,order=4,category=percentage,alias=IVA"`
	Reimbursed  bool      `json:"reimbursed" excel:"label=Reimbursed,order=5,alias=Rimborsato"`
	IncurredOn  time.Time `json:"incurred_on" excel:"label=Date,order=6,category=date,alias=Data"`
}

func (Expense) TableName() string { return "Expense report" }

// ReportHeader is the general block placed above the tables of a full
// report export.
type ReportHeader struct {
	Company     string    `excel:"label=Company,order=0"`
	Period      string    `excel:"label=Period,order=1"`
	GeneratedOn time.Time `excel:"label=Generated,order=2,category=date"`
}

// ExpenseFilter narrows a listing. Zero fields are ignored.
type ExpenseFilter struct {
	Region string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

type ExpenseRepository interface {
	List(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	BulkInsert(ctx context.Context, expenses []Expense) error
}
