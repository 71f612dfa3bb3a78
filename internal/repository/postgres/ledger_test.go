package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/repository/postgres"
)

func TestLedgerRepository_RecordPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)

	fees := true
	entry := &domain.LedgerEntry{
		RequestID:  "req-1",
		Amount:     10000,
		Mode:       domain.PaymentModeOrangeMoney,
		WithFees:   &fees,
		PaidOn:     "2026-02-01",
		RecordedBy: "admin-1",
	}
	mock.ExpectExec("INSERT INTO payment_ledger").
		WithArgs(sqlmock.AnyArg(), "req-1", int64(10000), domain.PaymentModeOrangeMoney, true, "", "2026-02-01", "", "admin-1", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.RecordPayment(context.Background(), entry)
	assert.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.RecordedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepository_ListByRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewLedgerRepository(db)
	now := time.Now().UTC()

	cols := []string{"id", "request_id", "amount", "mode", "with_fees", "description", "paid_on", "paid_at_time", "recorded_by", "recorded_by_name", "recorded_at"}
	mock.ExpectQuery("SELECT id, request_id, amount, mode, with_fees").
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l-1", "req-1", 5000, "cash", nil, "Membership fee", "2026-02-01", "09:00", "admin-1", "Issa", now).
			AddRow("l-2", "req-1", 2500, "wave", false, "Membership fee", "2026-02-02", "", "admin-2", "Fanta", now))

	entries, err := repo.ListByRequest(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].WithFees)
	require.NotNil(t, entries[1].WithFees)
	assert.False(t, *entries[1].WithFees)
	assert.Equal(t, domain.PaymentModeWave, entries[1].Mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
