package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentMode(t *testing.T) {
	assert.True(t, PaymentModeCash.Valid())
	assert.True(t, PaymentModeMobicash.Valid())
	assert.False(t, PaymentMode("bitcoin").Valid())

	assert.True(t, PaymentModeMobicash.MobileMoney())
	assert.True(t, PaymentModeOrangeMoney.MobileMoney())
	assert.False(t, PaymentModeCash.MobileMoney())
	assert.False(t, PaymentMode("bitcoin").MobileMoney())
}

func TestNewPayment(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	yes := true

	t.Run("MobileMoneyKeepsFees", func(t *testing.T) {
		p := NewPayment(PaymentInfo{
			Amount: 15000, Mode: PaymentModeWave, Time: " 10:15 ", WithFees: &yes,
			PaymentMethodOther: ptr("ignored"), RecordedBy: "admin-1", RecordedByName: "Moussa Keita",
		}, now)

		assert.Equal(t, "10:15", p.Time)
		assert.Equal(t, "2026-10-17", p.Date)
		assert.Equal(t, now, p.RecordedAt)
		assert.NotNil(t, p.WithFees)
		assert.True(t, *p.WithFees)
		assert.Nil(t, p.PaymentMethodOther)
	})

	t.Run("OtherKeepsLabelDropsFees", func(t *testing.T) {
		p := NewPayment(PaymentInfo{
			Amount: 15000, Mode: PaymentModeOther, Date: "2026-10-01", Time: "08:00",
			WithFees: &yes, PaymentMethodOther: ptr(" voucher "),
		}, now)

		assert.Equal(t, "2026-10-01", p.Date)
		assert.Nil(t, p.WithFees)
		assert.Equal(t, "voucher", *p.PaymentMethodOther)
	})
}

func TestRequestStatistics(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		var s RequestStatistics
		s.ComputeRates()
		assert.Equal(t, int64(0), s.Total)
		assert.Equal(t, 0.0, s.PendingRate)
		assert.Equal(t, 0.0, s.PaidRate)
	})

	t.Run("Counts", func(t *testing.T) {
		var s RequestStatistics
		s.Add(RequestStatusPending, false, 2)
		s.Add(RequestStatusPending, true, 1)
		s.Add(RequestStatusApproved, true, 1)
		s.ComputeRates()

		assert.Equal(t, int64(4), s.Total)
		assert.Equal(t, int64(3), s.Pending)
		assert.Equal(t, int64(2), s.Paid)
		assert.Equal(t, int64(2), s.Unpaid)
		assert.InDelta(t, 75.0, s.PendingRate, 0.001)
		assert.InDelta(t, 25.0, s.ApprovedRate, 0.001)
		assert.InDelta(t, 50.0, s.PaidRate, 0.001)
	})
}
