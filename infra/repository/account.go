package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/money"
)

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, mapAccountErr(err)
	}
	return accountToDomain(&m), nil
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return nil, mapAccountErr(err)
	}
	return accountToDomain(&m), nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "number = ?", number).Error; err != nil {
		return nil, mapAccountErr(err)
	}
	return accountToDomain(&m), nil
}

// GetForUpdate takes a SELECT ... FOR UPDATE row lock, serializing balance
// mutations per account for the duration of the enclosing transaction.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, mapAccountErr(err)
	}
	return accountToDomain(&m), nil
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := accountFromDomain(a)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	m := accountFromDomain(a)
	return r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", a.ID).
		Select("*").Omit("created_at", "deleted_at", "id").Updates(m).Error
}

func mapAccountErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.ErrAccountNotFound
	}
	return err
}

func accountToDomain(m *Account) *account.Account {
	return &account.Account{
		ID:           m.ID,
		UserID:       m.UserID,
		Number:       m.Number,
		Balance:      money.FromCents(m.Balance),
		Status:       account.Status(m.Status),
		PinHash:      m.PinHash,
		PinAttempts:  m.PinAttempts,
		CreditScore:  m.CreditScore,
		KYCSubmitted: m.KYCSubmitted,
		KYCConfirmed: m.KYCConfirmed,
		EmailAlerts:  m.EmailAlerts,
		HideBalance:  m.HideBalance,
		DarkMode:     m.DarkMode,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func accountFromDomain(a *account.Account) *Account {
	return &Account{
		ID:           a.ID,
		UserID:       a.UserID,
		Number:       a.Number,
		Balance:      a.Balance.Cents(),
		Status:       string(a.Status),
		PinHash:      a.PinHash,
		PinAttempts:  a.PinAttempts,
		CreditScore:  a.CreditScore,
		KYCSubmitted: a.KYCSubmitted,
		KYCConfirmed: a.KYCConfirmed,
		EmailAlerts:  a.EmailAlerts,
		HideBalance:  a.HideBalance,
		DarkMode:     a.DarkMode,
	}
}
