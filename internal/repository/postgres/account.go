package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/repository"
	"mutuelle-membership/internal/security"
)

// AccountCreator turns an approved request into a member account and an
// active subscription. The request document is switched to approved in the
// same transaction.
type AccountCreator struct {
	db             *sql.DB
	passwordLength int
}

func NewAccountCreator(db *sql.DB) *AccountCreator {
	return &AccountCreator{db: db, passwordLength: security.DefaultPasswordLength}
}

// WithPasswordLength sets the length of generated temporary passwords.
func (a *AccountCreator) WithPasswordLength(n int) *AccountCreator {
	if n > 0 {
		a.passwordLength = n
	}
	return a
}

func (a *AccountCreator) CreateMemberAccount(ctx context.Context, in domain.AccountCreationRequest) (*domain.AccountCreationResult, error) {
	logger.EnterMethod("AccountCreator.CreateMemberAccount", "requestID", in.RequestID, "adminID", in.AdminID)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	req, err := lockRequest(ctx, tx, in.RequestID)
	if errors.Is(err, repository.ErrNotFound) {
		return refused("request not found"), nil
	}
	if err != nil {
		logger.ExitMethodWithError("AccountCreator.CreateMemberAccount", err, "requestID", in.RequestID)
		return nil, err
	}
	if !req.IsPaid {
		return refused("request is not paid"), nil
	}
	if !domain.CanTransition(req.Status, domain.RequestStatusApproved) {
		return refused(fmt.Sprintf("request status %s cannot be approved", req.Status)), nil
	}
	email := strings.TrimSpace(req.Contacts.Email)
	if email == "" {
		return refused("applicant has no e-mail address"), nil
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT nextval('member_matricule_seq')`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to allocate matricule: %w", err)
	}
	now := time.Now().UTC()
	matricule := fmt.Sprintf("MUT-%d-%05d", now.Year(), seq)

	password, err := security.GeneratePassword(a.passwordLength)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	companyID := pickRef(in.CompanyRef, req.Employment.CompanyRef)
	professionID := pickRef(in.ProfessionRef, req.Employment.ProfessionRef)

	memberID := uuid.NewString()
	memberQuery := `INSERT INTO members (id, matricule, request_id, email, password_hash, first_name, last_name, membership_type, company_id, profession_id, created_by, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	logger.DatabaseCall("INSERT", "members", "requestID", in.RequestID, "matricule", matricule)
	if _, err := tx.ExecContext(ctx, memberQuery, memberID, matricule, in.RequestID, email, hash,
		req.Identity.FirstName, req.Identity.LastName, in.MembershipType, companyID, professionID, in.AdminID, now); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	subscriptionID := uuid.NewString()
	subQuery := `INSERT INTO subscriptions (id, member_id, membership_type, adhesion_document_ref, status, start_date, created_at)
	             VALUES ($1, $2, $3, $4, 'active', $5, $6)`
	if _, err := tx.ExecContext(ctx, subQuery, subscriptionID, memberID, in.MembershipType, in.AdhesionDocumentRef, now.Format("2006-01-02"), now); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	adminID := in.AdminID
	req.Status = domain.RequestStatusApproved
	req.Matricule = &matricule
	req.ProcessedBy = &adminID
	req.ProcessedAt = &now
	req.ClearCorrection()
	if companyID != nil {
		req.Employment.CompanyRef = *companyID
	}
	if professionID != nil {
		req.Employment.ProfessionRef = *professionID
	}
	if err := writeRequest(ctx, tx, in.RequestID, req); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	logger.ExitMethod("AccountCreator.CreateMemberAccount", "requestID", in.RequestID, "matricule", matricule)
	return &domain.AccountCreationResult{
		Success:        true,
		Matricule:      matricule,
		Email:          email,
		Password:       password,
		SubscriptionID: subscriptionID,
		CompanyID:      companyID,
		ProfessionID:   professionID,
	}, nil
}

func refused(reason string) *domain.AccountCreationResult {
	logger.Warn("Account creation refused", "reason", reason)
	return &domain.AccountCreationResult{Success: false, Reason: reason}
}

func pickRef(explicit *string, stored string) *string {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		v := strings.TrimSpace(*explicit)
		return &v
	}
	if stored != "" {
		return &stored
	}
	return nil
}
