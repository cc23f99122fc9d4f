// Package repository implements the persistence contracts of
// pkg/repository on GORM with Postgres.
package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the database record for a user identity.
type User struct {
	gorm.Model
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Username string    `gorm:"uniqueIndex;not null;size:50"`
	Email    string    `gorm:"uniqueIndex;not null;size:255"`
	Password string    `gorm:"not null"`
	Names    string
	Admin    bool `gorm:"not null;default:false"`
}

// Account is the database record for an account.
type Account struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Number      string    `gorm:"uniqueIndex;not null;size:12"`
	Balance     int64     `gorm:"not null;default:0"`
	Status      string    `gorm:"type:varchar(20);not null;default:'active'"`
	PinHash     string    `gorm:"size:100"`
	PinAttempts int       `gorm:"not null;default:0"`
	CreditScore int       `gorm:"not null;default:680"`

	KYCSubmitted bool `gorm:"not null;default:false"`
	KYCConfirmed bool `gorm:"not null;default:false"`

	EmailAlerts bool `gorm:"not null;default:true"`
	HideBalance bool `gorm:"not null;default:false"`
	DarkMode    bool `gorm:"not null;default:false"`
}

// Transaction is the database record for a monetary event.
type Transaction struct {
	gorm.Model
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	SenderID   *uuid.UUID `gorm:"type:uuid;index"`
	ReceiverID *uuid.UUID `gorm:"type:uuid;index"`
	Amount     int64      `gorm:"not null"`
	Type       string     `gorm:"type:varchar(20);not null;default:'transfer'"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	Date       time.Time  `gorm:"not null;index"`

	RejectionReason string `gorm:"size:255"`

	TargetNumber  string `gorm:"size:100"`
	BankName      string `gorm:"size:100"`
	RoutingNumber string `gorm:"size:100"`
	Note          string `gorm:"size:100"`
}

// Loan is the database record for a loan.
type Loan struct {
	gorm.Model
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null"`
	Principal      int64     `gorm:"not null"`
	TermMonths     int       `gorm:"not null;default:12"`
	Purpose        string    `gorm:"size:100"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalRepayment int64     `gorm:"not null;default:0"`
	AmountPaid     int64     `gorm:"not null;default:0"`
	AppliedAt      time.Time `gorm:"not null"`
}

// Notification is the database record for a user-facing alert.
type Notification struct {
	gorm.Model
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Message string    `gorm:"type:text;not null"`
	Read    bool      `gorm:"not null;default:false"`
}

// Models lists every record type for AutoMigrate.
func Models() []any {
	return []any{&User{}, &Account{}, &Transaction{}, &Loan{}, &Notification{}}
}
