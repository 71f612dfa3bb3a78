package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/repository"
)

type requestRepository struct {
	db     *sql.DB
	ledger repository.LedgerRepository
}

// NewRequestRepository stores requests as JSONB documents. Status and isPaid
// are duplicated into columns for counting. ledger may be nil.
func NewRequestRepository(db *sql.DB, ledger repository.LedgerRepository) repository.RequestRepository {
	return &requestRepository{db: db, ledger: ledger}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.MembershipRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}
	if req.Payments == nil {
		req.Payments = []domain.Payment{}
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	query := `INSERT INTO membership_requests (id, status, is_paid, document, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	logger.DatabaseCall("INSERT", "membership_requests", "requestID", req.ID)
	_, err = r.db.ExecContext(ctx, query, req.ID, req.Status, req.IsPaid, doc, req.CreatedAt, req.UpdatedAt)
	logger.DatabaseResult("INSERT", 1, err, "requestID", req.ID)
	return err
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: request id is required", repository.ErrInvalidArgument)
	}

	var raw []byte
	query := `SELECT document FROM membership_requests WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRequest(id, raw)
}

func (r *requestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.MembershipRequest, error) {
	query := `SELECT id, document FROM membership_requests WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.MembershipRequest
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		req, err := decodeRequest(id, raw)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func (r *requestRepository) Update(ctx context.Context, id string, fn repository.Mutator) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: request id is required", repository.ErrInvalidArgument)
	}
	logger.EnterMethod("requestRepository.Update", "requestID", id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("requestRepository.Update", err, "reason", "begin")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	req, err := lockRequest(ctx, tx, id)
	if err != nil {
		logger.ExitMethodWithError("requestRepository.Update", err, "requestID", id)
		return err
	}

	write, err := fn(req)
	if err != nil {
		logger.ExitMethod("requestRepository.Update", "requestID", id, "aborted", err.Error())
		return err
	}
	if !write {
		logger.ExitMethod("requestRepository.Update", "requestID", id, "written", false)
		return nil
	}

	if err := writeRequest(ctx, tx, id, req); err != nil {
		logger.ExitMethodWithError("requestRepository.Update", err, "requestID", id)
		return err
	}
	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("requestRepository.Update", err, "reason", "commit")
		return fmt.Errorf("failed to commit request update: %w", err)
	}

	logger.ExitMethod("requestRepository.Update", "requestID", id, "written", true)
	return nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, patch *domain.RequestPatch) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", repository.ErrInvalidArgument, status)
	}
	return r.Update(ctx, id, func(req *domain.MembershipRequest) (bool, error) {
		if err := domain.CheckTransition(req.Status, status); err != nil {
			return false, err
		}
		patch.Apply(req)
		req.Status = status
		return true, nil
	})
}

func (r *requestRepository) MarkAsPaid(ctx context.Context, id string, info domain.PaymentInfo) error {
	return r.markAsPaid(ctx, id, info, false)
}

func (r *requestRepository) MarkAsPaidOnce(ctx context.Context, id string, info domain.PaymentInfo) error {
	return r.markAsPaid(ctx, id, info, true)
}

func (r *requestRepository) markAsPaid(ctx context.Context, id string, info domain.PaymentInfo, once bool) error {
	if info.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", repository.ErrInvalidArgument)
	}
	if !info.Mode.Valid() {
		return fmt.Errorf("%w: unknown payment mode %q", repository.ErrInvalidArgument, info.Mode)
	}

	payment := domain.NewPayment(info, time.Now().UTC())
	err := r.Update(ctx, id, func(req *domain.MembershipRequest) (bool, error) {
		if once && req.IsPaid {
			return false, repository.ErrAlreadyPaid
		}
		req.Payments = append(req.Payments, payment)
		req.IsPaid = true
		return true, nil
	})
	if err != nil {
		return err
	}

	r.mirrorPayment(ctx, id, payment)
	return nil
}

// mirrorPayment copies a committed payment into the ledger. Failures are
// logged only.
func (r *requestRepository) mirrorPayment(ctx context.Context, requestID string, p domain.Payment) {
	if r.ledger == nil {
		return
	}
	entry := &domain.LedgerEntry{
		RequestID:      requestID,
		Amount:         p.Amount,
		Mode:           p.Mode,
		WithFees:       p.WithFees,
		Description:    "Membership fee",
		PaidOn:         p.Date,
		PaidAtTime:     p.Time,
		RecordedBy:     p.RecordedBy,
		RecordedByName: p.RecordedByName,
		RecordedAt:     p.RecordedAt,
	}
	if p.PaymentMethodOther != nil {
		entry.Description = fmt.Sprintf("Membership fee (%s)", *p.PaymentMethodOther)
	}
	if err := r.ledger.RecordPayment(ctx, entry); err != nil {
		logger.Warn("Failed to mirror payment into ledger", "requestID", requestID, "error", err)
	}
}

func (r *requestRepository) GetStatistics(ctx context.Context) (*domain.RequestStatistics, error) {
	query := `SELECT status, is_paid, count(*) FROM membership_requests GROUP BY status, is_paid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.RequestStatistics{}
	for rows.Next() {
		var status string
		var paid bool
		var count int64
		if err := rows.Scan(&status, &paid, &count); err != nil {
			return nil, err
		}
		stats.Add(domain.RequestStatus(status), paid, count)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats.ComputeRates()
	return stats, nil
}

// lockRequest loads a request and holds its row lock until tx ends.
func lockRequest(ctx context.Context, tx *sql.Tx, id string) (*domain.MembershipRequest, error) {
	var raw []byte
	query := `SELECT document FROM membership_requests WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", query, "requestID", id)
	err := tx.QueryRowContext(ctx, query, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRequest(id, raw)
}

func writeRequest(ctx context.Context, tx *sql.Tx, id string, req *domain.MembershipRequest) error {
	req.ID = id
	req.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	query := `UPDATE membership_requests SET status = $1, is_paid = $2, document = $3, updated_at = $4 WHERE id = $5`
	result, err := tx.ExecContext(ctx, query, req.Status, req.IsPaid, doc, req.UpdatedAt, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "requestID", id)
	return err
}

func decodeRequest(id string, raw []byte) (*domain.MembershipRequest, error) {
	req := &domain.MembershipRequest{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, fmt.Errorf("failed to decode request %s: %w", id, err)
	}
	req.ID = id
	if req.Payments == nil {
		req.Payments = []domain.Payment{}
	}
	return req, nil
}
