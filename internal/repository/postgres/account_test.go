package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/repository/postgres"
)

func TestAccountCreator_CreateMemberAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	creator := postgres.NewAccountCreator(db)
	ctx := context.Background()
	in := domain.AccountCreationRequest{
		RequestID:           "req-1",
		AdminID:             "admin-1",
		MembershipType:      domain.MembershipTypeActive,
		AdhesionDocumentRef: "docs/adhesion.pdf",
	}

	t.Run("Success", func(t *testing.T) {
		doc := requestDoc(t, domain.MembershipRequest{
			Status:     domain.RequestStatusUnderReview,
			IsPaid:     true,
			Identity:   domain.Identity{FirstName: "Awa", LastName: "Traoré"},
			Contacts:   domain.Contacts{Email: " awa@example.ml "},
			Employment: domain.Employment{CompanyRef: "co-1"},
		})
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs("req-1").
			WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(doc))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT nextval('member_matricule_seq')`)).
			WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(42))
		mock.ExpectExec("INSERT INTO members").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "req-1", "awa@example.ml", sqlmock.AnyArg(),
				"Awa", "Traoré", domain.MembershipTypeActive, "co-1", nil, "admin-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO subscriptions").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), domain.MembershipTypeActive, "docs/adhesion.pdf", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE membership_requests SET status").
			WithArgs(domain.RequestStatusApproved, true, sqlmock.AnyArg(), sqlmock.AnyArg(), "req-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		res, err := creator.CreateMemberAccount(ctx, in)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "awa@example.ml", res.Email)
		assert.Regexp(t, `^MUT-\d{4}-00042$`, res.Matricule)
		assert.Contains(t, res.Matricule, time.Now().UTC().Format("2006"))
		assert.NotEmpty(t, res.Password)
		assert.NotEmpty(t, res.SubscriptionID)
		require.NotNil(t, res.CompanyID)
		assert.Equal(t, "co-1", *res.CompanyID)
		assert.Nil(t, res.ProfessionID)
	})

	t.Run("UnpaidRefused", func(t *testing.T) {
		doc := requestDoc(t, domain.MembershipRequest{
			Status:   domain.RequestStatusPending,
			Contacts: domain.Contacts{Email: "a@b.ml"},
		})
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs("req-1").
			WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(doc))
		mock.ExpectRollback()

		res, err := creator.CreateMemberAccount(ctx, in)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Reason)
	})

	t.Run("MissingEmailRefused", func(t *testing.T) {
		doc := requestDoc(t, domain.MembershipRequest{Status: domain.RequestStatusPending, IsPaid: true})
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs("req-1").
			WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(doc))
		mock.ExpectRollback()

		res, err := creator.CreateMemberAccount(ctx, in)
		require.NoError(t, err)
		assert.False(t, res.Success)
	})

	t.Run("AlreadyApprovedRefused", func(t *testing.T) {
		doc := requestDoc(t, domain.MembershipRequest{Status: domain.RequestStatusApproved, IsPaid: true, Contacts: domain.Contacts{Email: "a@b.ml"}})
		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).WithArgs("req-1").
			WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(doc))
		mock.ExpectRollback()

		res, err := creator.CreateMemberAccount(ctx, in)
		require.NoError(t, err)
		assert.False(t, res.Success)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
