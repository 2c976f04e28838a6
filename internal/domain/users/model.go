package users

import (
	"errors"
	"time"

	"github.com/Spok95/subpass/internal/domain/address"
)

var (
	ErrNotFound = errors.New("users: not found")
	// ErrAddressTaken is returned when another telegram account already holds the address.
	ErrAddressTaken = errors.New("users: address already linked")
)

// User is a telegram account and the address it acts for.
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	Address    address.Address
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Linked reports whether the user has bound an address.
func (u *User) Linked() bool { return u != nil && !u.Address.IsZero() }

type Telegram struct {
	ID       int64
	Username string
}
