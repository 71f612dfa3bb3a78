package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/repository"
)

type paymentRecorder struct {
	reqRepo   repository.RequestRepository
	adminRepo repository.AdminRepository
	notifier  NotificationService
	now       func() time.Time
}

func NewPaymentRecorder(reqRepo repository.RequestRepository, adminRepo repository.AdminRepository, notifier NotificationService) PaymentRecorder {
	return &paymentRecorder{
		reqRepo:   reqRepo,
		adminRepo: adminRepo,
		notifier:  notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RecordPayment records the membership fee of a request. The payment is
// attributed to the admin's resolved name; an admin that cannot be resolved
// aborts the operation before anything is written.
func (s *paymentRecorder) RecordPayment(ctx context.Context, requestID, adminID string, info domain.PaymentInfo) error {
	logger.EnterMethod("paymentRecorder.RecordPayment", "requestID", requestID, "adminID", adminID, "mode", info.Mode)

	if err := validatePayment(info); err != nil {
		logger.ExitMethodWithError("paymentRecorder.RecordPayment", err, "reason", "validation")
		return err
	}

	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get request: %w", err)
	}
	if req.IsPaid {
		return ErrAlreadyPaid
	}

	name, err := s.resolveAdmin(ctx, adminID)
	if err != nil {
		logger.ExitMethodWithError("paymentRecorder.RecordPayment", err, "adminID", adminID)
		return err
	}

	info.RecordedBy = adminID
	info.RecordedByName = name
	info.RecordedAt = s.now()
	// A concurrent recording may have landed since the read above.
	if err := s.reqRepo.MarkAsPaidOnce(ctx, requestID, info); err != nil {
		logger.ExitMethodWithError("paymentRecorder.RecordPayment", err, "requestID", requestID)
		if errors.Is(err, ErrAlreadyPaid) {
			return ErrAlreadyPaid
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}

	notify(ctx, s.notifier, requestID, domain.NotificationTypePaymentRecorded,
		"Payment recorded",
		fmt.Sprintf("%s recorded a payment of %d XOF (%s) for %s", name, info.Amount, info.Mode, req.FullName()),
		map[string]string{
			"amount":     strconv.FormatInt(info.Amount, 10),
			"mode":       string(info.Mode),
			"recordedBy": adminID,
		})

	logger.ExitMethod("paymentRecorder.RecordPayment", "requestID", requestID)
	return nil
}

func (s *paymentRecorder) resolveAdmin(ctx context.Context, adminID string) (string, error) {
	if strings.TrimSpace(adminID) == "" {
		return "", ErrUnknownAdmin
	}
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && admin == nil) {
		return "", fmt.Errorf("%w: %s", ErrUnknownAdmin, adminID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve admin %s: %w", adminID, err)
	}
	name := admin.DisplayName()
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedAdminIdentity, adminID)
	}
	return name, nil
}

// validatePayment checks caller input in a fixed order before any I/O.
func validatePayment(info domain.PaymentInfo) error {
	if info.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !info.Mode.Valid() {
		return ErrInvalidPaymentMode
	}
	if strings.TrimSpace(info.Time) == "" {
		return ErrMissingTime
	}
	if info.Mode == domain.PaymentModeOther && (info.PaymentMethodOther == nil || strings.TrimSpace(*info.PaymentMethodOther) == "") {
		return ErrMissingOtherMethodLabel
	}
	if info.Mode.MobileMoney() && info.WithFees == nil {
		return ErrMissingFeesFlag
	}
	return nil
}
