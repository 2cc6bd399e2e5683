package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remit/internal/models"
	"remit/internal/repositories"
	"remit/internal/services/notification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const operationTransfer = "transfer"

// service implements the transfer Service interface.
type service struct {
	store    LedgerStore
	fees     FeeCalculator
	notifier Notifier
	config   Config
	metrics  MetricsCollector
	logger   *zap.Logger
}

// NewService creates a new transfer service instance. notifier, metrics and
// logger may be nil.
func NewService(store LedgerStore, fees FeeCalculator, notifier Notifier, cfg Config, metrics MetricsCollector, logger *zap.Logger) Service {
	if store == nil {
		panic("transfer: nil ledger store")
	}
	if fees == nil {
		panic("transfer: nil fee calculator")
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		store:    store,
		fees:     fees,
		notifier: notifier,
		config:   cfg.withDefaults(),
		metrics:  metrics,
		logger:   logger.Named("transfer"),
	}
}

// ValidateAmount checks range and precision of a transfer amount.
func ValidateAmount(amount, minAmount, maxAmount decimal.Decimal) error {
	if amount.LessThan(minAmount) {
		return &AmountError{Reason: "must be at least " + minAmount.StringFixed(AmountPlaces)}
	}
	if amount.GreaterThan(maxAmount) {
		return &AmountError{Reason: "must not exceed " + maxAmount.StringFixed(AmountPlaces)}
	}
	if !amount.Equal(amount.Truncate(AmountPlaces)) {
		return &AmountError{Reason: fmt.Sprintf("must have at most %d decimal places", AmountPlaces)}
	}
	return nil
}

func (s *service) Quote(amount decimal.Decimal) (*Quote, error) {
	if err := ValidateAmount(amount, s.config.MinAmount, s.config.MaxAmount); err != nil {
		return nil, err
	}
	return &Quote{
		Amount:     amount,
		Commission: s.fees.Commission(amount),
		TotalDebit: s.fees.TotalDebit(amount),
	}, nil
}

// Transfer moves funds between two accounts.
func (s *service) Transfer(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal) (result *Result, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(operationTransfer, time.Since(start))
		s.metrics.RecordOperationResult(operationTransfer, resultLabel(err))
	}()

	quote, err := s.Quote(amount)
	if err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, ErrSelfTransfer
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	record := &models.TransferRecord{
		ReferenceToken: uuid.NewString(),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Amount:         amount,
		CommissionFee:  quote.Commission,
		Status:         models.TransferStatusCompleted,
	}
	var sender, receiver *models.Account

	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.LedgerTx) error {
		var err error
		sender, receiver, err = lockPair(ctx, tx, senderID, receiverID)
		if err != nil {
			return err
		}

		if sender.Balance.LessThan(quote.TotalDebit) {
			return &InsufficientFundsError{
				Required:   quote.TotalDebit,
				Commission: quote.Commission,
				Available:  sender.Balance,
			}
		}

		sender.Balance = sender.Balance.Sub(quote.TotalDebit)
		receiver.Balance = receiver.Balance.Add(amount)

		if err := tx.UpdateBalance(ctx, sender.ID, sender.Balance); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, receiver.ID, receiver.Balance); err != nil {
			return err
		}
		return tx.CreateTransferRecord(ctx, record)
	})
	if err != nil {
		err = classify(err)
		s.logFailure(err, senderID, receiverID, amount)
		return nil, err
	}

	s.metrics.RecordTransactionVolume(amount, quote.Commission)
	s.logger.Info("transfer completed",
		zap.String("reference", record.ReferenceToken),
		zap.Uint("sender_id", senderID),
		zap.Uint("receiver_id", receiverID),
		zap.Stringer("amount", amount),
		zap.Stringer("commission", quote.Commission),
	)

	result = &Result{Record: record, Sender: sender, Receiver: receiver}
	s.notify(ctx, result)
	return result, nil
}

// lockPair locks both rows in ascending ID order so two opposite transfers
// can never wait on each other.
func lockPair(ctx context.Context, tx repositories.LedgerTx, senderID, receiverID uint) (*models.Account, *models.Account, error) {
	first, second := senderID, receiverID
	if second < first {
		first, second = second, first
	}

	locked := make(map[uint]*models.Account, 2)
	for _, id := range []uint{first, second} {
		account, err := tx.LockAccount(ctx, id)
		if errors.Is(err, repositories.ErrAccountNotFound) {
			role := "receiver"
			if id == senderID {
				role = "sender"
			}
			return nil, nil, &AccountNotFoundError{AccountID: id, Role: role}
		}
		if err != nil {
			return nil, nil, err
		}
		locked[id] = account
	}
	return locked[senderID], locked[receiverID], nil
}

// notify runs after commit. Its outcome never changes the transfer result.
func (s *service) notify(ctx context.Context, result *Result) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.NotifyTimeout)
	defer cancel()

	event := notification.NewEvent(result.Record, result.Sender, result.Receiver)
	if err := s.notifier.Dispatch(ctx, event); err != nil {
		s.logger.Warn("transfer notification failed",
			zap.String("reference", result.Record.ReferenceToken),
			zap.Error(err),
		)
	}
}

func (s *service) logFailure(err error, senderID, receiverID uint, amount decimal.Decimal) {
	fields := []zap.Field{
		zap.Uint("sender_id", senderID),
		zap.Uint("receiver_id", receiverID),
		zap.Stringer("amount", amount),
		zap.Error(err),
	}
	if isKind(err, ErrStoreFailure) {
		s.logger.Error("transfer rolled back", fields...)
		return
	}
	s.logger.Info("transfer rejected", fields...)
}

// classify keeps domain errors as they are and files everything else,
// deadlines included, under ErrStoreFailure.
func classify(err error) error {
	if isKind(err, ErrInsufficientFunds) || isKind(err, ErrAccountNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}
