package domain

import (
	"strings"
	"time"
)

type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeCheck        PaymentMode = "check"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeOrangeMoney  PaymentMode = "orange_money"
	PaymentModeMoovMoney    PaymentMode = "moov_money"
	PaymentModeWave         PaymentMode = "wave"
	PaymentModeMobicash     PaymentMode = "mobicash"
	PaymentModeOther        PaymentMode = "other"
)

var paymentModes = map[PaymentMode]bool{
	PaymentModeCash:         false,
	PaymentModeCheck:        false,
	PaymentModeBankTransfer: false,
	PaymentModeOrangeMoney:  true,
	PaymentModeMoovMoney:    true,
	PaymentModeWave:         true,
	PaymentModeMobicash:     true,
	PaymentModeOther:        false,
}

// Valid reports whether the mode is one of the accepted payment channels.
func (m PaymentMode) Valid() bool {
	_, ok := paymentModes[m]
	return ok
}

// MobileMoney reports whether the mode is a mobile-money channel, for which
// the fees flag is mandatory.
func (m PaymentMode) MobileMoney() bool {
	return paymentModes[m]
}

// PaymentInfo is the caller-supplied description of a payment.
type PaymentInfo struct {
	Amount             int64       `json:"amount"`
	Mode               PaymentMode `json:"mode"`
	Date               string      `json:"date"`
	Time               string      `json:"time"`
	WithFees           *bool       `json:"withFees,omitempty"`
	PaymentMethodOther *string     `json:"paymentMethodOther,omitempty"`
	RecordedBy         string      `json:"recordedBy"`
	RecordedByName     string      `json:"recordedByName"`
	RecordedAt         time.Time   `json:"recordedAt"`
}

type Payment struct {
	Amount             int64       `json:"amount"`
	Mode               PaymentMode `json:"mode"`
	Date               string      `json:"date"`
	Time               string      `json:"time"`
	WithFees           *bool       `json:"withFees,omitempty"`
	PaymentMethodOther *string     `json:"paymentMethodOther,omitempty"`
	RecordedBy         string      `json:"recordedBy"`
	RecordedByName     string      `json:"recordedByName"`
	RecordedAt         time.Time   `json:"recordedAt"`
}

// NewPayment normalizes caller input into a stored payment. Fields that do not
// apply to the mode are dropped.
func NewPayment(info PaymentInfo, now time.Time) Payment {
	p := Payment{
		Amount:         info.Amount,
		Mode:           info.Mode,
		Date:           strings.TrimSpace(info.Date),
		Time:           strings.TrimSpace(info.Time),
		RecordedBy:     info.RecordedBy,
		RecordedByName: strings.TrimSpace(info.RecordedByName),
		RecordedAt:     info.RecordedAt,
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = now
	}
	if p.Date == "" {
		p.Date = p.RecordedAt.Format("2006-01-02")
	}
	if info.Mode.MobileMoney() && info.WithFees != nil {
		fees := *info.WithFees
		p.WithFees = &fees
	}
	if info.Mode == PaymentModeOther && info.PaymentMethodOther != nil {
		label := strings.TrimSpace(*info.PaymentMethodOther)
		p.PaymentMethodOther = &label
	}
	return p
}
