package repositories

import (
	"context"
	"errors"
	"fmt"
	"remit/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository returns the Postgres-backed LedgerRepository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(&ledgerTx{db: tx}); err != nil {
			return err
		}
		// a caller that gave up must not see its work committed later
		return ctx.Err()
	})
}

func (r *ledgerRepository) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *ledgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListTransfers(ctx context.Context, accountID uint, limit, offset int) ([]models.TransferRecord, int64, error) {
	if offset < 0 {
		offset = 0
	}
	scope := r.db.WithContext(ctx).
		Model(&models.TransferRecord{}).
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
		Session(&gorm.Session{})

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var records []models.TransferRecord
	err := scope.
		Preload("Sender").
		Preload("Receiver").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	return records, total, nil
}

func (r *ledgerRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type ledgerTx struct {
	db *gorm.DB
}

func (t *ledgerTx) LockAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account %d: %w", id, err)
	}
	return &account, nil
}

func (t *ledgerTx) UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return ErrNegativeBalance
	}
	result := t.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("balance", balance)
	if result.Error != nil {
		return fmt.Errorf("failed to update balance of account %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (t *ledgerTx) CreateTransferRecord(ctx context.Context, record *models.TransferRecord) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create transfer record: %w", err)
	}
	return nil
}
