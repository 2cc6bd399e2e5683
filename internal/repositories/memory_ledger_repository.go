package repositories

import (
	"context"
	"fmt"
	"remit/internal/models"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// memoryRow is one account plus its row lock. Holding the single token of
// lock means holding the exclusive lock on the row.
type memoryRow struct {
	lock    chan struct{}
	account models.Account
}

// MemoryLedgerRepository is an in-process LedgerRepository with the same
// locking contract as the Postgres one: blocking exclusive row locks scoped
// to a unit of work, staged writes applied all at once on commit.
type MemoryLedgerRepository struct {
	mu           sync.RWMutex
	rows         map[uint]*memoryRow
	records      []models.TransferRecord
	lastAccount  uint
	lastRecord   uint
	now          func() time.Time
	beforeCommit func() error
}

// NewMemoryLedgerRepository creates an empty in-memory ledger.
func NewMemoryLedgerRepository() *MemoryLedgerRepository {
	return &MemoryLedgerRepository{
		rows: make(map[uint]*memoryRow),
		now:  time.Now,
	}
}

// FailCommitsWith makes every following commit fail with the error returned
// by hook, simulating an infrastructure failure at commit time. A nil hook
// restores normal behaviour.
func (m *MemoryLedgerRepository) FailCommitsWith(hook func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeCommit = hook
}

func (m *MemoryLedgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerTx) error) error {
	tx := &memoryTx{
		store:    m,
		held:     make(map[uint]*memoryRow),
		balances: make(map[uint]decimal.Decimal),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (m *MemoryLedgerRepository) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account := row.account
	return &account, nil
}

func (m *MemoryLedgerRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, row := range m.rows {
		if row.account.Email == email {
			account := row.account
			return &account, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (m *MemoryLedgerRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.Balance.IsNegative() {
		return ErrNegativeBalance
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.account.Email == account.Email {
			return ErrDuplicateAccount
		}
	}

	if account.ID == 0 {
		m.lastAccount++
		account.ID = m.lastAccount
	} else if _, exists := m.rows[account.ID]; exists {
		return ErrDuplicateAccount
	} else if account.ID > m.lastAccount {
		m.lastAccount = account.ID
	}

	now := m.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	m.rows[account.ID] = &memoryRow{
		lock:    make(chan struct{}, 1),
		account: *account,
	}
	return nil
}

func (m *MemoryLedgerRepository) ListTransfers(ctx context.Context, accountID uint, limit, offset int) ([]models.TransferRecord, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.TransferRecord
	for _, rec := range m.records {
		if rec.SenderID == accountID || rec.ReceiverID == accountID {
			matched = append(matched, rec)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []models.TransferRecord{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]models.TransferRecord, 0, end-offset)
	for _, rec := range matched[offset:end] {
		rec.Sender = m.accountCopy(rec.SenderID)
		rec.Receiver = m.accountCopy(rec.ReceiverID)
		page = append(page, rec)
	}
	return page, total, nil
}

func (m *MemoryLedgerRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// accountCopy must be called with m.mu held.
func (m *MemoryLedgerRepository) accountCopy(id uint) *models.Account {
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	account := row.account
	return &account
}

type memoryTx struct {
	store    *MemoryLedgerRepository
	held     map[uint]*memoryRow
	balances map[uint]decimal.Decimal
	records  []*models.TransferRecord
}

func (t *memoryTx) LockAccount(ctx context.Context, id uint) (*models.Account, error) {
	if row, ok := t.held[id]; ok {
		return t.view(row), nil
	}

	t.store.mu.RLock()
	row, ok := t.store.rows[id]
	t.store.mu.RUnlock()
	if !ok {
		return nil, ErrAccountNotFound
	}

	select {
	case row.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to lock account %d: %w", id, ctx.Err())
	}
	t.held[id] = row

	return t.view(row), nil
}

func (t *memoryTx) UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal) error {
	if _, ok := t.held[id]; !ok {
		return fmt.Errorf("account %d is not locked in this unit of work", id)
	}
	if balance.IsNegative() {
		return ErrNegativeBalance
	}
	t.balances[id] = balance
	return nil
}

func (t *memoryTx) CreateTransferRecord(ctx context.Context, record *models.TransferRecord) error {
	t.store.mu.Lock()
	t.store.lastRecord++
	record.ID = t.store.lastRecord
	t.store.mu.Unlock()

	now := t.store.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	staged := *record
	t.records = append(t.records, &staged)
	return nil
}

// view returns the row as this unit of work sees it, staged balance included.
func (t *memoryTx) view(row *memoryRow) *models.Account {
	t.store.mu.RLock()
	account := row.account
	t.store.mu.RUnlock()

	if balance, ok := t.balances[account.ID]; ok {
		account.Balance = balance
	}
	return &account
}

func (t *memoryTx) commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.beforeCommit != nil {
		if err := t.store.beforeCommit(); err != nil {
			return err
		}
	}

	for _, staged := range t.records {
		for _, rec := range t.store.records {
			if rec.ReferenceToken == staged.ReferenceToken {
				return fmt.Errorf("duplicate reference token %s", staged.ReferenceToken)
			}
		}
	}

	now := t.store.now()
	for id, balance := range t.balances {
		row := t.held[id]
		row.account.Balance = balance
		row.account.UpdatedAt = now
	}
	for _, staged := range t.records {
		t.store.records = append(t.store.records, *staged)
	}
	return nil
}

// release drops every row lock taken by the unit of work, whether it
// committed or not.
func (t *memoryTx) release() {
	for id, row := range t.held {
		<-row.lock
		delete(t.held, id)
	}
}

var _ LedgerRepository = (*MemoryLedgerRepository)(nil)
