package postgres

import (
	"database/sql"

	"mutuelle-membership/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.RequestRepository
	repository.AdminRepository
	repository.LedgerRepository
	repository.NotificationRepository
	Accounts *AccountCreator
}

func NewStore(db *sql.DB) *Store {
	ledger := NewLedgerRepository(db)
	return &Store{
		db:                     db,
		RequestRepository:      NewRequestRepository(db, ledger),
		AdminRepository:        NewAdminRepository(db),
		LedgerRepository:       ledger,
		NotificationRepository: NewNotificationRepository(db),
		Accounts:               NewAccountCreator(db),
	}
}
