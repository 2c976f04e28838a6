package classes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErr "github.com/Spok95/subpass/internal/domain/errors"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	std, err := cat.Lookup(Standard)
	require.NoError(t, err)
	assert.Equal(t, 4, std.SeatLimit)
	assert.Equal(t, 3, std.MaxGrants())
	assert.True(t, std.Permits(26))
	assert.False(t, std.Permits(10))
	assert.Equal(t, uint64(4), std.DefaultDuration())

	basic, err := cat.Lookup(Basic)
	require.NoError(t, err)
	assert.Equal(t, 0, basic.MaxGrants())

	_, err = cat.Lookup(4)
	assert.ErrorIs(t, err, domainErr.ErrInvalidClass)
	_, err = cat.Lookup(None)
	assert.ErrorIs(t, err, domainErr.ErrInvalidClass)

	ids := []uint64{}
	for _, c := range cat.List() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []uint64{Basic, Standard, Premium}, ids)
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name string
		cs   []Class
	}{
		{"empty", nil},
		{"reserved id", []Class{{ID: 0, SeatLimit: 1, Durations: []uint64{1}}}},
		{"no seats", []Class{{ID: 1, SeatLimit: 0, Durations: []uint64{1}}}},
		{"no durations", []Class{{ID: 1, SeatLimit: 1}}},
		{"zero duration", []Class{{ID: 1, SeatLimit: 1, Durations: []uint64{0}}}},
		{"duplicate", []Class{
			{ID: 1, SeatLimit: 1, Durations: []uint64{1}},
			{ID: 1, SeatLimit: 2, Durations: []uint64{2}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.cs...)
			assert.Error(t, err)
		})
	}
}

func TestCatalogCopiesDurations(t *testing.T) {
	durations := []uint64{7}
	cat, err := NewCatalog(Class{ID: 9, Name: "Custom", SeatLimit: 2, Durations: durations})
	require.NoError(t, err)

	durations[0] = 99
	c, err := cat.Lookup(9)
	require.NoError(t, err)
	assert.True(t, c.Permits(7))
}
