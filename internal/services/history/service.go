// Package history builds an account's statement: its balance and the
// transfers it sent or received, newest first.
package history

import (
	"context"
	"time"

	"remit/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// LedgerReader is the read side of the ledger used for statements.
type LedgerReader interface {
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	ListTransfers(ctx context.Context, accountID uint, limit, offset int) ([]models.TransferRecord, int64, error)
}

// Entry is one transfer as seen from the statement's account.
type Entry struct {
	ID                   uint            `json:"id"`
	TransactionReference string          `json:"transaction_reference"`
	Direction            string          `json:"direction"`
	Amount               decimal.Decimal `json:"amount"`
	CommissionFee        decimal.Decimal `json:"commission_fee"`
	Status               string          `json:"status"`
	Sender               *models.Party   `json:"sender"`
	Receiver             *models.Party   `json:"receiver"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Statement is one page of an account's history.
type Statement struct {
	Balance      decimal.Decimal
	Transactions []Entry
	Total        int64
}

type Service interface {
	Statement(ctx context.Context, accountID uint, limit, offset int) (*Statement, error)
}

type service struct {
	ledger LedgerReader
}

func NewService(ledger LedgerReader) Service {
	return &service{ledger: ledger}
}

func (s *service) Statement(ctx context.Context, accountID uint, limit, offset int) (*Statement, error) {
	account, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	records, total, err := s.ledger.ListTransfers(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(records))
	for i := range records {
		entries = append(entries, NewEntry(accountID, &records[i]))
	}
	return &Statement{Balance: account.Balance, Transactions: entries, Total: total}, nil
}

// NewEntry presents rec from the side of accountID. Commission shows only on
// the sender side.
func NewEntry(accountID uint, rec *models.TransferRecord) Entry {
	direction := DirectionReceived
	fee := decimal.Zero
	if rec.SenderID == accountID {
		direction = DirectionSent
		fee = rec.CommissionFee
	}
	return Entry{
		ID:                   rec.ID,
		TransactionReference: rec.ReferenceToken,
		Direction:            direction,
		Amount:               rec.Amount,
		CommissionFee:        fee,
		Status:               rec.Status,
		Sender:               partyOr(rec.Sender, rec.SenderID),
		Receiver:             partyOr(rec.Receiver, rec.ReceiverID),
		CreatedAt:            rec.CreatedAt,
	}
}

func partyOr(account *models.Account, id uint) *models.Party {
	if account == nil {
		return &models.Party{ID: id}
	}
	return account.AsParty()
}
