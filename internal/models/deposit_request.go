package models

import "time"

// Manual deposit request statuses.
const (
	DepositRequestPending  = "pending"
	DepositRequestApproved = "approved"
	DepositRequestRejected = "rejected"
)

// DepositRequest is a user's claim of an out-of-band payment, waiting
// for an admin to confirm receipt and credit the balance.
type DepositRequest struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Status    string    `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserName  string `json:"user_name,omitempty"`
	UserPhone string `json:"user_phone,omitempty"`
}

func (DepositRequest) TableName() string { return "deposit_requests" }
