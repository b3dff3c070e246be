package models

import "time"

// Transaction types
const (
	TxnDeposit    = "deposit"
	TxnWithdrawal = "withdrawal"
	TxnProfit     = "profit"
)

// Transaction statuses. Rows are append-only; only withdrawal rows
// transition after creation (pending -> completed or failed).
const (
	TxnPending   = "pending"
	TxnCompleted = "completed"
	TxnFailed    = "failed"
)

type Transaction struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Type   string `gorm:"not null" json:"type"`
	Amount int64  `gorm:"not null" json:"amount"`
	Status string `gorm:"not null;default:'pending'" json:"status"`
	// Reference is an external id for support lookups.
	Reference string `gorm:"uniqueIndex" json:"reference"`
	// InvestmentID links profit and disbursement entries to the
	// investment that produced them. The partial unique index admits at
	// most one profit row per investment, which is what makes the
	// conditional credit in AppendProfitOnce safe across instances.
	InvestmentID *uint     `gorm:"index;uniqueIndex:udx_transactions_profit_investment,where:type = 'profit'" json:"investment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	UserName  string `json:"user_name,omitempty"`
	UserPhone string `json:"user_phone,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }

// Delta is the signed effect of a completed entry on the user's balance.
func (t *Transaction) Delta() int64 {
	if t.Type == TxnWithdrawal {
		return -t.Amount
	}
	return t.Amount
}
