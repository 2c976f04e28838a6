package subscriptions

import (
	"time"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
)

// Subscription is the per-owner record. The zero value (ClassID == classes.None,
// ExpiresAt == 0) means "no active subscription".
type Subscription struct {
	ClassID   uint64          `json:"classId"`
	SeatLimit int             `json:"seatLimit"`
	Owner     address.Address `json:"owner"`
	ExpiresAt int64           `json:"expirationDate"` // unix seconds, 0 when empty
}

// Empty returns the canonical empty record for owner.
func Empty(owner address.Address) Subscription {
	return Subscription{Owner: owner}
}

// Active reports whether the record holds a subscription, expired or not.
func (s Subscription) Active() bool { return s.ClassID != classes.None }

// Expired reports whether an active subscription's expiration has passed.
// Nothing clears expired records; callers decide what expiry means for them.
func (s Subscription) Expired(now time.Time) bool {
	return s.Active() && now.Unix() >= s.ExpiresAt
}

// ExpiresTime is ExpiresAt as a time, zero for empty records.
func (s Subscription) ExpiresTime() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0).UTC()
}
