package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/account"
)

// WireDetailsRequest carries the external-bank fields of a wire transfer.
type WireDetailsRequest struct {
	AccountNumber string `json:"account_number" validate:"required,numeric"`
	BankName      string `json:"bank_name" validate:"required"`
	RoutingNumber string `json:"routing_number" validate:"required,len=9,numeric"`
}

// TransferRequest initiates a transfer. TargetNumber is required unless the
// wire fields are present.
type TransferRequest struct {
	TargetNumber string              `json:"target_number" validate:"required_without=Wire,omitempty,len=10,numeric"`
	Amount       float64             `json:"amount" validate:"required,gt=0"`
	Pin          string              `json:"pin" validate:"required,len=4,numeric"`
	Note         string              `json:"note" validate:"max=200"`
	Wire         *WireDetailsRequest `json:"wire,omitempty"`
}

// ConfirmRequest echoes the step-up code of a suspended transfer.
type ConfirmRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// DepositRequest submits a check deposit.
type DepositRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note" validate:"max=200"`
}

// PayBillRequest pays a biller.
type PayBillRequest struct {
	Biller string  `json:"biller" validate:"required,max=100"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Pin    string  `json:"pin" validate:"required,len=4,numeric"`
}

// TransactionResponse is the public view of the resulting transaction.
type TransactionResponse struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

func toTransactionResponse(t *account.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:     t.ID,
		Type:   string(t.Type),
		Status: string(t.Status),
		Amount: t.Amount.Float(),
		Date:   t.Date,
	}
}
