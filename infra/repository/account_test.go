package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/money"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gdb, mock
}

func accountColumns() []string {
	return []string{
		"id", "user_id", "number", "balance", "status",
		"pin_hash", "pin_attempts", "credit_score",
		"kyc_submitted", "kyc_confirmed",
		"email_alerts", "hide_balance", "dark_mode",
	}
}

func TestAccountRepository_Get(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := &accountRepository{db: gdb}

	id := uuid.New()
	userID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows(accountColumns()).AddRow(
			id.String(), userID.String(), "9123456780", int64(25_000), "active",
			"", 0, 680,
			false, false,
			true, false, false,
		))

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, int64(25_000), got.Balance.Cents())
	assert.Equal(t, account.StatusActive, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetMapsNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := &accountRepository{db: gdb}

	mock.ExpectQuery(`SELECT \* FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows(accountColumns()))

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetForUpdateLocksRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := &accountRepository{db: gdb}

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1 .* FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows(accountColumns()).AddRow(
			id.String(), uuid.New().String(), "9123456780", int64(0), "active",
			"", 0, 680,
			false, false,
			true, false, false,
		))

	_, err := repo.GetForUpdate(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Update(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := &accountRepository{db: gdb}

	acc := &account.Account{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Number:      "9123456780",
		Balance:     money.FromCents(7_500),
		Status:      account.StatusActive,
		CreditScore: 680,
		EmailAlerts: true,
	}

	mock.ExpectExec(`UPDATE "accounts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), acc))
	require.NoError(t, mock.ExpectationsWereMet())
}
