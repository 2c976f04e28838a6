// Package events is the append-only log of lifecycle events. Events are
// written in the same transaction as the state change they describe.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/subpass/internal/domain/address"
)

type Name string

const (
	NameSubscriptionPurchased  Name = "SubscriptionPurchased"
	NameUserAddedToAllowedList Name = "UserAddedToAllowedList"
	NameTokenTransferred       Name = "TokenTransferred"
	NameApprovalForAll         Name = "ApprovalForAll"
	NamePaused                 Name = "Paused"
	NameUnpaused               Name = "Unpaused"
	NameOwnershipTransferred   Name = "OwnershipTransferred"
)

type Payload interface {
	EventName() Name
}

type SubscriptionPurchased struct {
	Owner    address.Address `json:"owner"`
	TokenID  uint64          `json:"tokenId"`
	ClassID  uint64          `json:"classId"`
	Duration uint64          `json:"duration"`
}

type UserAddedToAllowedList struct {
	Owner   address.Address `json:"owner"`
	ClassID uint64          `json:"classId"`
	User    address.Address `json:"user"`
}

type TokenTransferred struct {
	From     address.Address `json:"from"`
	To       address.Address `json:"to"`
	TokenID  uint64          `json:"tokenId"`
	Quantity uint64          `json:"quantity"`
}

type ApprovalForAll struct {
	Holder   address.Address `json:"holder"`
	Operator address.Address `json:"operator"`
	Approved bool            `json:"approved"`
}

type Paused struct {
	Account address.Address `json:"account"`
}

type Unpaused struct {
	Account address.Address `json:"account"`
}

type OwnershipTransferred struct {
	Previous address.Address `json:"previousOwner"`
	New      address.Address `json:"newOwner"`
}

func (SubscriptionPurchased) EventName() Name  { return NameSubscriptionPurchased }
func (UserAddedToAllowedList) EventName() Name { return NameUserAddedToAllowedList }
func (TokenTransferred) EventName() Name       { return NameTokenTransferred }
func (ApprovalForAll) EventName() Name         { return NameApprovalForAll }
func (Paused) EventName() Name                 { return NamePaused }
func (Unpaused) EventName() Name               { return NameUnpaused }
func (OwnershipTransferred) EventName() Name   { return NameOwnershipTransferred }

type Event struct {
	Seq     int64     `json:"seq"`
	ID      uuid.UUID `json:"id"`
	At      time.Time `json:"at"`
	Name    Name      `json:"name"`
	Payload Payload   `json:"payload"`
}

func New(at time.Time, p Payload) Event {
	return Event{ID: uuid.New(), At: at.UTC(), Name: p.EventName(), Payload: p}
}

// Decode rebuilds a payload from its stored JSON form.
func Decode(name Name, raw []byte) (Payload, error) {
	var p Payload
	switch name {
	case NameSubscriptionPurchased:
		p = &SubscriptionPurchased{}
	case NameUserAddedToAllowedList:
		p = &UserAddedToAllowedList{}
	case NameTokenTransferred:
		p = &TokenTransferred{}
	case NameApprovalForAll:
		p = &ApprovalForAll{}
	case NamePaused:
		p = &Paused{}
	case NameUnpaused:
		p = &Unpaused{}
	case NameOwnershipTransferred:
		p = &OwnershipTransferred{}
	default:
		return nil, fmt.Errorf("events: unknown name %q", name)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("events: decode %s: %w", name, err)
	}
	return deref(p), nil
}

func deref(p Payload) Payload {
	switch v := p.(type) {
	case *SubscriptionPurchased:
		return *v
	case *UserAddedToAllowedList:
		return *v
	case *TokenTransferred:
		return *v
	case *ApprovalForAll:
		return *v
	case *Paused:
		return *v
	case *Unpaused:
		return *v
	case *OwnershipTransferred:
		return *v
	}
	return p
}
