package loan

import (
	"time"

	"github.com/google/uuid"

	"github.com/veltris/banking/pkg/domain/loan"
)

// ApplyRequest is a loan application.
type ApplyRequest struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	TermMonths int     `json:"term_months" validate:"required,min=1,max=360"`
	Purpose    string  `json:"purpose" validate:"max=200"`
}

// RepayRequest applies a repayment.
type RepayRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Pin    string  `json:"pin" validate:"required,len=4,numeric"`
}

// LoanResponse is the public view of a loan.
type LoanResponse struct {
	ID             uuid.UUID `json:"id"`
	Principal      float64   `json:"principal"`
	TermMonths     int       `json:"term_months"`
	Purpose        string    `json:"purpose,omitempty"`
	Status         string    `json:"status"`
	TotalRepayment float64   `json:"total_repayment"`
	AmountPaid     float64   `json:"amount_paid"`
	Remaining      float64   `json:"remaining"`
	AppliedAt      time.Time `json:"applied_at"`
}

func toLoanResponse(l *loan.Loan) LoanResponse {
	return LoanResponse{
		ID:             l.ID,
		Principal:      l.Principal.Float(),
		TermMonths:     l.TermMonths,
		Purpose:        l.Purpose,
		Status:         string(l.Status),
		TotalRepayment: l.TotalRepayment.Float(),
		AmountPaid:     l.AmountPaid.Float(),
		Remaining:      l.Remaining().Float(),
		AppliedAt:      l.AppliedAt,
	}
}
