package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veltris/banking/pkg/domain/loan"
	"github.com/veltris/banking/pkg/money"
)

type loanRepository struct {
	db *gorm.DB
}

func (r *loanRepository) Get(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	var m Loan
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, err
	}
	return loanToDomain(&m), nil
}

func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	return r.db.WithContext(ctx).Create(loanFromDomain(l)).Error
}

func (r *loanRepository) Update(ctx context.Context, l *loan.Loan) error {
	return r.db.WithContext(ctx).Model(&Loan{}).Where("id = ?", l.ID).
		Updates(map[string]any{
			"status":      string(l.Status),
			"amount_paid": l.AmountPaid.Cents(),
		}).Error
}

func (r *loanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*loan.Loan, error) {
	var ms []Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("applied_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return loansToDomain(ms), nil
}

func (r *loanRepository) ListPending(ctx context.Context) ([]*loan.Loan, error) {
	var ms []Loan
	err := r.db.WithContext(ctx).
		Where("status = ?", string(loan.StatusPending)).
		Order("applied_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return loansToDomain(ms), nil
}

func loansToDomain(ms []Loan) []*loan.Loan {
	out := make([]*loan.Loan, 0, len(ms))
	for i := range ms {
		out = append(out, loanToDomain(&ms[i]))
	}
	return out
}

func loanToDomain(m *Loan) *loan.Loan {
	return &loan.Loan{
		ID:             m.ID,
		UserID:         m.UserID,
		Principal:      money.FromCents(m.Principal),
		TermMonths:     m.TermMonths,
		Purpose:        m.Purpose,
		Status:         loan.Status(m.Status),
		TotalRepayment: money.FromCents(m.TotalRepayment),
		AmountPaid:     money.FromCents(m.AmountPaid),
		AppliedAt:      m.AppliedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func loanFromDomain(l *loan.Loan) *Loan {
	return &Loan{
		ID:             l.ID,
		UserID:         l.UserID,
		Principal:      l.Principal.Cents(),
		TermMonths:     l.TermMonths,
		Purpose:        l.Purpose,
		Status:         string(l.Status),
		TotalRepayment: l.TotalRepayment.Cents(),
		AmountPaid:     l.AmountPaid.Cents(),
		AppliedAt:      l.AppliedAt,
	}
}
