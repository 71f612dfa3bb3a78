package repository

import (
	"context"
	"errors"

	"mutuelle-membership/internal/domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyPaid     = errors.New("request is already paid")
)

// Mutator inspects a request loaded inside an atomic unit and changes it in
// place. Returning false discards the changes and writes nothing. A non-nil
// error aborts the unit.
type Mutator func(req *domain.MembershipRequest) (bool, error)

type RequestRepository interface {
	Create(ctx context.Context, req *domain.MembershipRequest) error
	GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error)
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.MembershipRequest, error)

	// Update runs fn against the current document and conditionally writes
	// it back, all in one atomic unit.
	Update(ctx context.Context, id string, fn Mutator) error
	// UpdateStatus merges patch and the new status into the stored document.
	// It fails with domain.ErrInvalidTransition when the move is not allowed.
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, patch *domain.RequestPatch) error
	// MarkAsPaid appends a payment and sets isPaid.
	MarkAsPaid(ctx context.Context, id string, info domain.PaymentInfo) error
	// MarkAsPaidOnce is MarkAsPaid refusing with ErrAlreadyPaid, inside the
	// same atomic unit, when the request is already paid.
	MarkAsPaidOnce(ctx context.Context, id string, info domain.PaymentInfo) error
	GetStatistics(ctx context.Context) (*domain.RequestStatistics, error)
}

type AdminRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
}

type LedgerRepository interface {
	RecordPayment(ctx context.Context, entry *domain.LedgerEntry) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.LedgerEntry, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, module string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id string) error
}
