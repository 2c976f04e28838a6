package classes

import (
	"fmt"
	"slices"
	"sort"

	domainErr "github.com/Spok95/subpass/internal/domain/errors"
)

// None is the class id of an empty subscription record.
const None uint64 = 0

const (
	Basic    uint64 = 1
	Standard uint64 = 2
	Premium  uint64 = 3
)

// Class is a subscription tier. Its id doubles as the token id.
type Class struct {
	ID        uint64   `mapstructure:"id"`
	Name      string   `mapstructure:"name"`
	SeatLimit int      `mapstructure:"seat_limit"` // includes the owner's own seat
	Durations []uint64 `mapstructure:"durations"`  // permitted duration units; first is canonical
}

// Permits reports whether d is one of the class's durations.
func (c Class) Permits(d uint64) bool { return slices.Contains(c.Durations, d) }

// DefaultDuration is used when a subscription is created by receiving a token.
func (c Class) DefaultDuration() uint64 { return c.Durations[0] }

// MaxGrants is how many addresses besides the owner may be allowed.
func (c Class) MaxGrants() int { return c.SeatLimit - 1 }

// Catalog is the immutable set of classes known to the service.
type Catalog struct {
	byID map[uint64]Class
}

// NewCatalog validates cs and builds a catalog from them.
func NewCatalog(cs ...Class) (Catalog, error) {
	if len(cs) == 0 {
		return Catalog{}, fmt.Errorf("classes: empty catalog")
	}
	byID := make(map[uint64]Class, len(cs))
	for _, c := range cs {
		switch {
		case c.ID == None:
			return Catalog{}, fmt.Errorf("classes: id 0 is reserved")
		case c.SeatLimit < 1:
			return Catalog{}, fmt.Errorf("classes: %d: seat limit must be >= 1", c.ID)
		case len(c.Durations) == 0:
			return Catalog{}, fmt.Errorf("classes: %d: no durations", c.ID)
		}
		if _, dup := byID[c.ID]; dup {
			return Catalog{}, fmt.Errorf("classes: duplicate id %d", c.ID)
		}
		for _, d := range c.Durations {
			if d == 0 {
				return Catalog{}, fmt.Errorf("classes: %d: zero duration", c.ID)
			}
		}
		c.Durations = slices.Clone(c.Durations)
		byID[c.ID] = c
	}
	return Catalog{byID: byID}, nil
}

// Default returns Basic, Standard and Premium, each sold for 4, 26 or 52 weeks.
func Default() Catalog {
	c, err := NewCatalog(
		Class{ID: Basic, Name: "Basic", SeatLimit: 1, Durations: []uint64{4, 26, 52}},
		Class{ID: Standard, Name: "Standard", SeatLimit: 4, Durations: []uint64{4, 26, 52}},
		Class{ID: Premium, Name: "Premium", SeatLimit: 4, Durations: []uint64{4, 26, 52}},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the class with the given id or ErrInvalidClass.
func (c Catalog) Lookup(id uint64) (Class, error) {
	cl, ok := c.byID[id]
	if !ok {
		return Class{}, domainErr.ErrInvalidClass
	}
	return cl, nil
}

// List returns every class ordered by id.
func (c Catalog) List() []Class {
	out := make([]Class, 0, len(c.byID))
	for _, cl := range c.byID {
		out = append(out, cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
