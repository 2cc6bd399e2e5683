// Package notification tells both parties of a transfer that it happened.
// Dispatch runs after the ledger commit and is best effort: a failure here
// never touches the committed transfer.
package notification

import (
	"context"
	"errors"
	"fmt"
	"remit/internal/models"
	"time"

	"github.com/shopspring/decimal"
)

// EventTransferCompleted is the name every dispatcher publishes under.
const EventTransferCompleted = "transaction.completed"

// Dispatcher delivers transfer events out of band.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *Event) error
}

// Party is one side of a transfer. Balance is the post-transfer balance and
// is left out of payloads shown to the other party.
type Party struct {
	ID      uint             `json:"id"`
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// Event describes a committed transfer.
type Event struct {
	Name                 string          `json:"event"`
	TransferID           uint            `json:"id"`
	TransactionReference string          `json:"transaction_reference"`
	Sender               Party           `json:"sender"`
	Receiver             Party           `json:"receiver"`
	Amount               decimal.Decimal `json:"amount"`
	CommissionFee        decimal.Decimal `json:"commission_fee"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
}

// NewEvent builds the event for a committed record and the two accounts as
// they were left by the transfer.
func NewEvent(record *models.TransferRecord, sender, receiver *models.Account) *Event {
	return &Event{
		Name:                 EventTransferCompleted,
		TransferID:           record.ID,
		TransactionReference: record.ReferenceToken,
		Sender:               partyOf(sender),
		Receiver:             partyOf(receiver),
		Amount:               record.Amount,
		CommissionFee:        record.CommissionFee,
		Status:               record.Status,
		CreatedAt:            record.CreatedAt,
	}
}

// Redacted returns a copy of the event without either balance.
func (e *Event) Redacted() *Event {
	cp := *e
	cp.Sender.Balance = nil
	cp.Receiver.Balance = nil
	return &cp
}

// Channel is the private channel name of an account holder.
func Channel(accountID uint) string {
	return fmt.Sprintf("users.%d", accountID)
}

func partyOf(a *models.Account) Party {
	if a == nil {
		return Party{}
	}
	balance := a.Balance
	return Party{ID: a.ID, Name: a.Name, Email: a.Email, Balance: &balance}
}

// Fanout dispatches to every dispatcher in turn and joins their errors.
type Fanout []Dispatcher

func (f Fanout) Dispatch(ctx context.Context, event *Event) error {
	var errs []error
	for _, d := range f {
		if err := d.Dispatch(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
