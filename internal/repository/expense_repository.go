package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/NicoPonziani/ExcelUtility/internal/domain"
)

type expenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a Postgres-backed expense repository.
func NewExpenseRepository(db *sql.DB) domain.ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) List(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, description, region, category, amount, vat_rate, reimbursed, incurred_on
		FROM expenses`)
	var args []interface{}
	var conds []string
	if filter.Region != "" {
		args = append(args, filter.Region)
		conds = append(conds, fmt.Sprintf("region = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conds = append(conds, fmt.Sprintf("incurred_on >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conds = append(conds, fmt.Sprintf("incurred_on <= $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY incurred_on, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Region, &e.Category, &e.Amount, &e.VATRate, &e.Reimbursed, &e.IncurredOn); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *expenseRepository) BulkInsert(ctx context.Context, expenses []domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO expenses
		(description, region, category, amount, vat_rate, reimbursed, incurred_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range expenses {
		if _, err := stmt.ExecContext(ctx, e.Description, e.Region, e.Category, e.Amount, e.VATRate, e.Reimbursed, e.IncurredOn); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert expense %q: %w", e.Description, err)
		}
	}
	return tx.Commit()
}
