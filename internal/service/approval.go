package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/repository"
)

const (
	minReasonLength = 10
	maxReasonLength = 2000
)

// ApprovalInput carries the admin's approval decision.
type ApprovalInput struct {
	RequestID           string
	AdminID             string
	MembershipType      domain.MembershipType
	AdhesionDocumentRef string
	CompanyRef          *string
	ProfessionRef       *string
}

type approvalOrchestrator struct {
	reqRepo     repository.RequestRepository
	accounts    AccountCreator
	credentials CredentialDeliverer
	emailSvc    EmailService
	notifier    NotificationService
	now         func() time.Time
}

// NewApprovalOrchestrator wires approval and rejection. credentials, emailSvc
// and notifier are optional.
func NewApprovalOrchestrator(
	reqRepo repository.RequestRepository,
	accounts AccountCreator,
	credentials CredentialDeliverer,
	emailSvc EmailService,
	notifier NotificationService,
) ApprovalOrchestrator {
	return &approvalOrchestrator{
		reqRepo:     reqRepo,
		accounts:    accounts,
		credentials: credentials,
		emailSvc:    emailSvc,
		notifier:    notifier,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *approvalOrchestrator) Approve(ctx context.Context, in ApprovalInput) (*domain.ApprovalResult, error) {
	logger.EnterMethod("approvalOrchestrator.Approve", "requestID", in.RequestID, "adminID", in.AdminID, "membershipType", in.MembershipType)

	req, err := s.reqRepo.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if !req.IsPaid {
		return nil, ErrNotPaid
	}
	if req.Status != domain.RequestStatusPending && req.Status != domain.RequestStatusUnderReview {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidStatus, req.Status)
	}
	if !in.MembershipType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMembershipType, in.MembershipType)
	}
	adhesionRef := strings.TrimSpace(in.AdhesionDocumentRef)
	if adhesionRef == "" {
		return nil, ErrMissingAdhesionDocument
	}
	if strings.TrimSpace(in.AdminID) == "" {
		return nil, ErrMissingAdmin
	}

	account, err := s.accounts.CreateMemberAccount(ctx, domain.AccountCreationRequest{
		RequestID:           in.RequestID,
		AdminID:             in.AdminID,
		MembershipType:      in.MembershipType,
		AdhesionDocumentRef: adhesionRef,
		CompanyRef:          in.CompanyRef,
		ProfessionRef:       in.ProfessionRef,
	})
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrApprovalFailed, err)
		logger.ExitMethodWithError("approvalOrchestrator.Approve", err, "requestID", in.RequestID)
		return nil, err
	}
	if account == nil || !account.Success {
		reason := "account creation refused"
		if account != nil && account.Reason != "" {
			reason = account.Reason
		}
		err = fmt.Errorf("%w: %s", ErrApprovalFailed, reason)
		logger.ExitMethodWithError("approvalOrchestrator.Approve", err, "requestID", in.RequestID)
		return nil, err
	}

	result := &domain.ApprovalResult{
		RequestID:      in.RequestID,
		Matricule:      account.Matricule,
		Email:          account.Email,
		SubscriptionID: account.SubscriptionID,
		CompanyID:      account.CompanyID,
		ProfessionID:   account.ProfessionID,
	}

	delivered := false
	if s.credentials != nil {
		err := s.credentials.Deliver(ctx, in.RequestID, domain.CredentialDocument{
			Name:      displayName(req),
			Matricule: account.Matricule,
			Email:     account.Email,
			Password:  account.Password,
		})
		if err != nil {
			logger.SideEffectFailed("credentials", in.RequestID, err, "matricule", account.Matricule)
		} else {
			delivered = true
		}
	}
	result.CredentialsDelivered = delivered
	if !delivered {
		result.TemporaryPassword = account.Password
	}

	notify(ctx, s.notifier, in.RequestID, domain.NotificationTypeRequestApproved,
		"Membership approved",
		fmt.Sprintf("%s is now member %s", req.FullName(), account.Matricule),
		map[string]string{"matricule": account.Matricule, "processedBy": in.AdminID, "membershipType": string(in.MembershipType)})

	logger.ExitMethod("approvalOrchestrator.Approve", "requestID", in.RequestID, "matricule", account.Matricule)
	return result, nil
}

// Reject moves a non-terminal request to rejected. Uploaded documents are
// kept.
func (s *approvalOrchestrator) Reject(ctx context.Context, requestID, adminID, reason string) error {
	logger.EnterMethod("approvalOrchestrator.Reject", "requestID", requestID, "adminID", adminID)

	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < minReasonLength || n > maxReasonLength {
		return ErrInvalidReason
	}
	if strings.TrimSpace(adminID) == "" {
		return ErrMissingAdmin
	}

	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get request: %w", err)
	}
	if req.Status.Terminal() {
		return fmt.Errorf("%w: request is %s", ErrInvalidStatus, req.Status)
	}

	now := s.now()
	admin := adminID
	err = s.reqRepo.UpdateStatus(ctx, requestID, domain.RequestStatusRejected, &domain.RequestPatch{
		MotifReject:     &reason,
		ProcessedBy:     &admin,
		ProcessedAt:     &now,
		ClearCorrection: true,
	})
	if err != nil {
		err = statusError(err)
		logger.ExitMethodWithError("approvalOrchestrator.Reject", err, "requestID", requestID)
		return err
	}

	if email := strings.TrimSpace(req.Contacts.Email); email != "" && s.emailSvc != nil {
		if err := s.emailSvc.SendRejection(ctx, email, displayName(req), reason); err != nil {
			logger.SideEffectFailed("rejection-email", requestID, err)
		}
	}
	notify(ctx, s.notifier, requestID, domain.NotificationTypeRequestRejected,
		"Membership rejected",
		fmt.Sprintf("The application of %s was rejected", req.FullName()),
		map[string]string{"processedBy": adminID})

	logger.ExitMethod("approvalOrchestrator.Reject", "requestID", requestID)
	return nil
}
