package service

import (
	"context"

	"mutuelle-membership/internal/domain"
)

type PaymentRecorder interface {
	RecordPayment(ctx context.Context, requestID, adminID string, info domain.PaymentInfo) error
}

type CorrectionWorkflow interface {
	RequestCorrections(ctx context.Context, requestID, adminID string, corrections []string) (*domain.CorrectionRequestResult, error)
	// VerifyCode never fails for a wrong code; the outcome is in the result.
	VerifyCode(ctx context.Context, requestID, code string) (*domain.CodeVerification, error)
	SubmitCorrections(ctx context.Context, requestID, code string, sub *domain.CorrectionSubmission) (*domain.CodeVerification, error)
	RenewCode(ctx context.Context, requestID, adminID string) (*domain.CorrectionRequestResult, error)
}

type ApprovalOrchestrator interface {
	Approve(ctx context.Context, in ApprovalInput) (*domain.ApprovalResult, error)
	Reject(ctx context.Context, requestID, adminID, reason string) error
}

type NotificationService interface {
	CreateNotification(ctx context.Context, module, entityID, notificationType, title, message string, metadata map[string]string) error
	GetNotifications(ctx context.Context, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

type EmailService interface {
	SendCorrectionRequest(ctx context.Context, email, name, message string) error
	SendCredentials(ctx context.Context, email, name string, document Attachment, downloadURL string) error
	SendRejection(ctx context.Context, email, name, reason string) error
}

// AccountCreator creates the member account, credentials and subscription for
// an approved request in one atomic operation. It also moves the request to
// approved.
type AccountCreator interface {
	CreateMemberAccount(ctx context.Context, in domain.AccountCreationRequest) (*domain.AccountCreationResult, error)
}

type CredentialDeliverer interface {
	Deliver(ctx context.Context, requestID string, doc domain.CredentialDocument) error
}

// PushSender fans a notification out to admin devices.
type PushSender interface {
	Push(ctx context.Context, note *domain.Notification) error
}

// Attachment is a file sent along with an e-mail.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}
