package models

import "time"

// User roles
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`
	Phone    string `gorm:"index;not null" json:"phone"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"default:'client'" json:"role"`
	// Balance is the authoritative current funds in whole currency units.
	// It is written only through the ledger service; every change has a
	// matching Transaction row.
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
