package models

import "time"

// Investment statuses. Status only moves forward:
// active -> completed, or active -> trading -> completed.
const (
	InvestmentPending   = "pending"
	InvestmentActive    = "active"
	InvestmentTrading   = "trading"
	InvestmentCompleted = "completed"
)

// Payment / withdrawal sub-statuses, both one-way pending -> paid.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"

	WithdrawalPending = "pending"
	WithdrawalPaid    = "paid"
)

type Investment struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	Amount        int64  `gorm:"not null" json:"amount"`
	Status        string `gorm:"not null;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"not null;default:'pending'" json:"payment_status"`
	// ProfitAmount is fixed at creation: round(amount * 0.6).
	ProfitAmount int64 `gorm:"not null;default:0" json:"profit_amount"`
	// TradingPeriod is the holding period in hours.
	TradingPeriod int       `gorm:"not null;default:24" json:"trading_period"`
	ExpiryDate    time.Time `gorm:"index" json:"expiry_date"`
	CreatedAt     time.Time `json:"created_at"`

	// ProfitPaidAt is set exactly once, by the claim that wins the race
	// to complete this investment.
	ProfitPaidAt      *time.Time `json:"profit_paid_at,omitempty"`
	PaymentApprovedAt *time.Time `json:"payment_approved_at,omitempty"`

	WithdrawalStatus     string     `gorm:"default:''" json:"withdrawal_status,omitempty"`
	WithdrawalApprovedAt *time.Time `json:"withdrawal_approved_at,omitempty"`

	// Snapshots for audit display, taken at creation.
	UserName  string `json:"user_name,omitempty"`
	UserPhone string `json:"user_phone,omitempty"`
}

func (Investment) TableName() string { return "investments" }

// Payout is the amount credited to the balance and recorded on the
// profit transaction when the investment matures: principal plus profit.
func (i *Investment) Payout() int64 { return i.Amount + i.ProfitAmount }

// Expired reports whether the holding period has elapsed at now.
func (i *Investment) Expired(now time.Time) bool {
	return !i.ExpiryDate.After(now)
}
