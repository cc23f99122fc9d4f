package notificationsvc

import (
	"context"
	"fmt"

	"github.com/veltris/banking/pkg/domain/account"
	"github.com/veltris/banking/pkg/domain/events"
	"github.com/veltris/banking/pkg/eventbus"
)

// RegisterHandlers subscribes the alert copy to the domain events. Handlers
// run after the emitting operation committed; their errors are the bus's
// problem, not the emitter's.
func RegisterHandlers(bus eventbus.Bus, svc *Service) {
	bus.Register(events.TransferExecuted{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.TransferExecuted)
		subject := "Transfer Alert"
		if ev.Status == account.TxProcessing {
			if err := svc.Notify(ctx, ev.SenderUserID, subject,
				fmt.Sprintf("Your transfer of $%s is processing.", ev.Amount)); err != nil {
				return err
			}
			return nil
		}
		if err := svc.Notify(ctx, ev.SenderUserID, subject,
			fmt.Sprintf("Debit Alert: You sent $%s.", ev.Amount)); err != nil {
			return err
		}
		if ev.ReceiverUserID != nil {
			return svc.Notify(ctx, *ev.ReceiverUserID, "Credit Alert",
				fmt.Sprintf("Credit Alert: You received $%s from %s.", ev.Amount, ev.SenderName))
		}
		return nil
	})

	bus.Register(events.TransferSettled{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.TransferSettled)
		if ev.SenderUserID != nil {
			if err := svc.Notify(ctx, *ev.SenderUserID, "Transfer Alert",
				fmt.Sprintf("Your transfer of $%s has completed.", ev.Amount)); err != nil {
				return err
			}
		}
		if ev.Credited && ev.ReceiverUserID != nil {
			from := ev.SenderName
			if from == "" {
				from = "Veltris Bank"
			}
			return svc.Notify(ctx, *ev.ReceiverUserID, "Credit Alert",
				fmt.Sprintf("Credit Alert: You received $%s from %s.", ev.Amount, from))
		}
		return nil
	})

	bus.Register(events.DepositSubmitted{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.DepositSubmitted)
		return svc.Notify(ctx, ev.UserID, "Deposit Alert",
			fmt.Sprintf("Your check deposit of $%s is under review.", ev.Amount))
	})

	bus.Register(events.BillPaid{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.BillPaid)
		return svc.Notify(ctx, ev.UserID, "Payment Alert",
			fmt.Sprintf("You paid $%s to %s.", ev.Amount, ev.Biller))
	})

	bus.Register(events.LoanApplied{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.LoanApplied)
		return svc.Notify(ctx, ev.UserID, "Loan Alert",
			fmt.Sprintf("Your loan application for $%s has been received.", ev.Principal))
	})

	bus.Register(events.LoanApproved{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.LoanApproved)
		return svc.Notify(ctx, ev.UserID, "Loan Alert",
			fmt.Sprintf("Loan Alert: Your loan of $%s has been approved and credited.", ev.Principal))
	})

	bus.Register(events.LoanRejected{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.LoanRejected)
		return svc.Notify(ctx, ev.UserID, "Loan Alert",
			"Unfortunately, your loan application was not approved.")
	})

	bus.Register(events.LoanRepaid{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.LoanRepaid)
		if ev.PaidOff {
			return svc.Notify(ctx, ev.UserID, "Loan Alert",
				"Congratulations! Your loan is fully repaid.")
		}
		return svc.Notify(ctx, ev.UserID, "Loan Alert",
			fmt.Sprintf("Loan repayment of $%s received.", ev.Amount))
	})

	bus.Register(events.AccountBlocked{}.Type(), func(ctx context.Context, e events.Event) error {
		ev := e.(events.AccountBlocked)
		return svc.Notify(ctx, ev.UserID, "Security Alert",
			"Your account has been blocked after repeated incorrect PIN entries. Contact support.")
	})
}
