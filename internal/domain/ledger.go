package domain

import "time"

// LedgerEntry mirrors a recorded payment into the cross-request payment ledger.
type LedgerEntry struct {
	ID             string      `json:"id"`
	RequestID      string      `json:"request_id"`
	Amount         int64       `json:"amount"`
	Mode           PaymentMode `json:"mode"`
	WithFees       *bool       `json:"with_fees,omitempty"`
	Description    string      `json:"description"`
	PaidOn         string      `json:"paid_on"`
	PaidAtTime     string      `json:"paid_at_time"`
	RecordedBy     string      `json:"recorded_by"`
	RecordedByName string      `json:"recorded_by_name"`
	RecordedAt     time.Time   `json:"recorded_at"`
}
