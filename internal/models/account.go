package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a funds holder. Balance is kept at four decimal places so that
// commission fees can be debited without rounding.
type Account struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Email     string          `gorm:"uniqueIndex;not null" json:"email"`
	Password  string          `gorm:"not null" json:"-"`
	Balance   decimal.Decimal `gorm:"type:numeric(16,4);not null;default:0;check:balance >= 0" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Party is the public view of an account shown to the other side of a transfer.
type Party struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AsParty strips the account down to its public fields.
func (a *Account) AsParty() *Party {
	if a == nil {
		return nil
	}
	return &Party{ID: a.ID, Name: a.Name, Email: a.Email}
}
