// Package export renders subscriptions and seat grants as an xlsx workbook.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/subpass/internal/domain/address"
	"github.com/Spok95/subpass/internal/domain/classes"
	"github.com/Spok95/subpass/internal/domain/subscriptions"
)

const (
	SubscriptionsSheet = "Subscriptions"
	SeatsSheet         = "Seats"
)

type Source interface {
	ListSubscriptions(ctx context.Context) ([]subscriptions.Subscription, error)
	GetUsersAllowed(ctx context.Context, owner address.Address) ([]address.Address, error)
	Catalog() classes.Catalog
}

// Workbook builds the report in memory. now decides the expired column.
func Workbook(ctx context.Context, src Source, now time.Time) ([]byte, error) {
	subs, err := src.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	cat := src.Catalog()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SubscriptionsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SeatsSheet); err != nil {
		return nil, err
	}

	header := []interface{}{"owner", "class_id", "class", "seat_limit", "seats_used", "expires_at", "expired"}
	if err := f.SetSheetRow(SubscriptionsSheet, "A1", &header); err != nil {
		return nil, err
	}
	seatHeader := []interface{}{"owner", "class_id", "user"}
	if err := f.SetSheetRow(SeatsSheet, "A1", &seatHeader); err != nil {
		return nil, err
	}

	row, seatRow := 2, 2
	for _, s := range subs {
		if !s.Active() {
			continue
		}
		users, err := src.GetUsersAllowed(ctx, s.Owner)
		if err != nil {
			return nil, fmt.Errorf("users of %s: %w", s.Owner, err)
		}
		name := ""
		if c, err := cat.Lookup(s.ClassID); err == nil {
			name = c.Name
		}
		line := []interface{}{
			s.Owner.String(),
			s.ClassID,
			name,
			s.SeatLimit,
			len(users),
			s.ExpiresTime().Format(time.RFC3339),
			s.Expired(now),
		}
		if err := setRow(f, SubscriptionsSheet, row, line); err != nil {
			return nil, err
		}
		row++

		for _, u := range users {
			if err := setRow(f, SeatsSheet, seatRow, []interface{}{s.Owner.String(), s.ClassID, u.String()}); err != nil {
				return nil, err
			}
			seatRow++
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the attachment name for a report made at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("subscriptions_%s.xlsx", now.Format("20060102_150405"))
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
