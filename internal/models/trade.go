package models

import "time"

// Trade statuses.
const (
	TradePending   = "pending"
	TradeCompleted = "completed"
)

// Trade is an admin-recorded trading round shown on the dashboard. It
// does not touch any balance; payouts flow through investments.
type Trade struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	AdminID     uint       `gorm:"not null;index" json:"admin_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Profit      int64      `gorm:"not null" json:"profit"`
	Status      string     `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (Trade) TableName() string { return "trades" }
