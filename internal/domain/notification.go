package domain

import "time"

const (
	NotificationModuleMembership = "membership"

	NotificationTypeCorrectionRequested = "CORRECTION_REQUESTED"
	NotificationTypeCorrectionSubmitted = "CORRECTION_SUBMITTED"
	NotificationTypeCodeRenewed         = "SECURITY_CODE_RENEWED"
	NotificationTypePaymentRecorded     = "PAYMENT_RECORDED"
	NotificationTypeRequestApproved     = "REQUEST_APPROVED"
	NotificationTypeRequestRejected     = "REQUEST_REJECTED"
	NotificationTypeStaleCodes          = "STALE_SECURITY_CODES"
)

type Notification struct {
	ID        string            `json:"id"`
	Module    string            `json:"module"`
	EntityID  string            `json:"entity_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}
