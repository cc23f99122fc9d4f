package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/money"
)

type transactionRepository struct {
	db *gorm.DB
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrTransactionNotFound
		}
		return nil, err
	}
	return txToDomain(&m), nil
}

func (r *transactionRepository) Create(ctx context.Context, t *account.Transaction) error {
	return r.db.WithContext(ctx).Create(txFromDomain(t)).Error
}

// Update persists only the mutable fields; amount, parties and type are
// immutable after creation.
func (r *transactionRepository) Update(ctx context.Context, t *account.Transaction) error {
	return r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", t.ID).
		Updates(map[string]any{
			"status":           string(t.Status),
			"rejection_reason": t.RejectionReason,
		}).Error
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*account.Transaction, error) {
	q := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ms []Transaction
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*account.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, txToDomain(&ms[i]))
	}
	return out, nil
}

func (r *transactionRepository) ListProcessingOlderThan(ctx context.Context, cutoff time.Time) ([]*account.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND date < ?", string(account.TxProcessing), cutoff).
		Order("date ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*account.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, txToDomain(&ms[i]))
	}
	return out, nil
}

func (r *transactionRepository) MonthlySums(ctx context.Context, userID uuid.UUID, year int, month time.Month) (money.Money, money.Money, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var in, out int64
	err := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("receiver_id = ? AND status = ? AND date >= ? AND date < ?",
			userID, string(account.TxSuccess), start, end).
		Select("COALESCE(SUM(amount), 0)").Scan(&in).Error
	if err != nil {
		return money.Zero(), money.Zero(), err
	}
	err = r.db.WithContext(ctx).Model(&Transaction{}).
		Where("sender_id = ? AND status = ? AND date >= ? AND date < ?",
			userID, string(account.TxSuccess), start, end).
		Select("COALESCE(SUM(amount), 0)").Scan(&out).Error
	if err != nil {
		return money.Zero(), money.Zero(), err
	}
	return money.FromCents(in), money.FromCents(out), nil
}

func txToDomain(m *Transaction) *account.Transaction {
	t := &account.Transaction{
		ID:              m.ID,
		SenderID:        m.SenderID,
		ReceiverID:      m.ReceiverID,
		Amount:          money.FromCents(m.Amount),
		Type:            account.TxType(m.Type),
		Status:          account.TxStatus(m.Status),
		Date:            m.Date,
		RejectionReason: m.RejectionReason,
		TargetNumber:    m.TargetNumber,
		Note:            m.Note,
	}
	if m.BankName != "" || m.RoutingNumber != "" {
		t.Wire = &account.WireDetails{
			AccountNumber: m.TargetNumber,
			BankName:      m.BankName,
			RoutingNumber: m.RoutingNumber,
		}
	}
	return t
}

func txFromDomain(t *account.Transaction) *Transaction {
	m := &Transaction{
		ID:              t.ID,
		SenderID:        t.SenderID,
		ReceiverID:      t.ReceiverID,
		Amount:          t.Amount.Cents(),
		Type:            string(t.Type),
		Status:          string(t.Status),
		Date:            t.Date,
		RejectionReason: t.RejectionReason,
		TargetNumber:    t.TargetNumber,
		Note:            t.Note,
	}
	if t.Wire != nil {
		m.TargetNumber = t.Wire.AccountNumber
		m.BankName = t.Wire.BankName
		m.RoutingNumber = t.Wire.RoutingNumber
	}
	return m
}
