package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) RecordPayment(ctx context.Context, e *domain.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	query := `INSERT INTO payment_ledger (id, request_id, amount, mode, with_fees, description, paid_on, paid_at_time, recorded_by, recorded_by_name, recorded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.RequestID, e.Amount, e.Mode, e.WithFees, e.Description, e.PaidOn, e.PaidAtTime, e.RecordedBy, e.RecordedByName, e.RecordedAt)
	return err
}

func (r *ledgerRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.LedgerEntry, error) {
	query := `SELECT id, request_id, amount, mode, with_fees, COALESCE(description, ''), paid_on, paid_at_time, recorded_by, recorded_by_name, recorded_at
	          FROM payment_ledger WHERE request_id = $1 ORDER BY recorded_at`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var withFees sql.NullBool
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Amount, &e.Mode, &withFees, &e.Description, &e.PaidOn, &e.PaidAtTime, &e.RecordedBy, &e.RecordedByName, &e.RecordedAt); err != nil {
			return nil, err
		}
		if withFees.Valid {
			fees := withFees.Bool
			e.WithFees = &fees
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
