package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
)

// SetPinRequest carries a new transaction PIN.
type SetPinRequest struct {
	Pin string `json:"pin" validate:"required,len=4,numeric"`
}

// ConfirmPinResetRequest completes a PIN reset.
type ConfirmPinResetRequest struct {
	Code   string `json:"code" validate:"required,len=6,numeric"`
	NewPin string `json:"new_pin" validate:"required,len=4,numeric"`
}

// PreferenceRequest toggles one account flag.
type PreferenceRequest struct {
	Name    string `json:"name" validate:"required,oneof=email_alerts hide_balance dark_mode"`
	Enabled bool   `json:"enabled"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID           uuid.UUID `json:"id"`
	Number       string    `json:"number"`
	Balance      float64   `json:"balance"`
	Status       string    `json:"status"`
	CreditScore  int       `json:"credit_score"`
	KYCSubmitted bool      `json:"kyc_submitted"`
	KYCConfirmed bool      `json:"kyc_confirmed"`
	EmailAlerts  bool      `json:"email_alerts"`
	HideBalance  bool      `json:"hide_balance"`
	DarkMode     bool      `json:"dark_mode"`
	HasPin       bool      `json:"has_pin"`
}

// TransactionResponse is the public view of a transaction.
type TransactionResponse struct {
	ID              uuid.UUID `json:"id"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Amount          float64   `json:"amount"`
	Date            time.Time `json:"date"`
	TargetNumber    string    `json:"target_number,omitempty"`
	Note            string    `json:"note,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

// SummaryResponse is the monthly money movement aggregate.
type SummaryResponse struct {
	MoneyIn  float64 `json:"money_in"`
	MoneyOut float64 `json:"money_out"`
}

func toAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:           a.ID,
		Number:       a.Number,
		Balance:      a.Balance.Float(),
		Status:       string(a.Status),
		CreditScore:  a.CreditScore,
		KYCSubmitted: a.KYCSubmitted,
		KYCConfirmed: a.KYCConfirmed,
		EmailAlerts:  a.EmailAlerts,
		HideBalance:  a.HideBalance,
		DarkMode:     a.DarkMode,
		HasPin:       a.PinHash != "",
	}
}

func toTransactionResponse(t *account.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Type:            string(t.Type),
		Status:          string(t.Status),
		Amount:          t.Amount.Float(),
		Date:            t.Date,
		TargetNumber:    t.TargetNumber,
		Note:            t.Note,
		RejectionReason: t.RejectionReason,
	}
}
