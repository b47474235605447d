package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"batchdesk/internal/core"
	"batchdesk/internal/sheets"
)

// DateOrder says how an all-numeric date such as 05/01/2024 is read.
type DateOrder int

const (
	// DayFirst reads 05/01/2024 as 5 January (en-IN and most non-US locales).
	DayFirst DateOrder = iota
	MonthFirst
)

// ParseDateOrder maps "DMY" or "MDY" (any case) to a DateOrder.
func ParseDateOrder(s string) (DateOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DMY":
		return DayFirst, nil
	case "MDY":
		return MonthFirst, nil
	default:
		return DayFirst, fmt.Errorf("unknown date order %q: want DMY or MDY", s)
	}
}

// unambiguousLayouts never depend on the date order.
var unambiguousLayouts = []string{
	core.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2-January-2006",
	"2 January 2006",
	"January 2, 2006",
}

var numericLayouts = map[DateOrder][]string{
	DayFirst:   {"2/1/2006", "2-1-2006", "2.1.2006"},
	MonthFirst: {"1/2/2006", "1-2-2006", "1.2.2006"},
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerialDate is 9999-12-31 as a serial number.
const maxSerialDate = 2958465

// toBatch maps a raw record to a Batch. Every error wraps core.ErrParse.
func toBatch(rec sheets.Record, catalog core.Catalog, order DateOrder) (core.Batch, error) {
	id := strings.TrimSpace(rec[sheets.ColID])
	if id == "" {
		return core.Batch{}, fmt.Errorf("missing id: %w", core.ErrParse)
	}
	name := strings.TrimSpace(rec[sheets.ColBatchName])
	if name == "" {
		return core.Batch{}, fmt.Errorf("batch %s: missing name: %w", id, core.ErrParse)
	}
	category := catalog.Resolve(rec[sheets.ColCategory])
	if category == "" {
		return core.Batch{}, fmt.Errorf("batch %s: missing category: %w", id, core.ErrParse)
	}
	price, err := parsePrice(rec[sheets.ColAmount])
	if err != nil {
		return core.Batch{}, fmt.Errorf("batch %s: amount %q: %w", id, rec[sheets.ColAmount], core.ErrParse)
	}
	date, err := parseStoredDate(rec[sheets.ColDate], order)
	if err != nil {
		return core.Batch{}, fmt.Errorf("batch %s: date %q: %w", id, rec[sheets.ColDate], core.ErrParse)
	}
	class := strings.TrimSpace(rec[sheets.ColClassGrade])
	if class == "" {
		return core.Batch{}, fmt.Errorf("batch %s: missing class: %w", id, core.ErrParse)
	}
	return core.Batch{
		ID:         id,
		Name:       name,
		Category:   category,
		Price:      price,
		Date:       date,
		ClassGrade: class,
	}, nil
}

// parsePrice accepts formatted amounts; negative numbers clamp to zero.
func parsePrice(s string) (core.Money, error) {
	if m, err := core.ParseMoney(s); err == nil {
		return m, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return core.Money{}, err
	}
	if math.IsInf(f, 0) || f*100 >= math.MaxInt64 {
		return core.Money{}, core.ErrInvalidAmount
	}
	return core.MoneyFromFloat(f), nil
}

// parseStoredDate reads ISO and month-name dates, spreadsheet serial numbers
// (what Sheets returns for date cells) and numeric dates in the given order.
func parseStoredDate(s string, order DateOrder) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range unambiguousLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > maxSerialDate {
			return core.Date{}, core.ErrInvalidDate
		}
		t := sheetsEpoch.AddDate(0, 0, int(math.Floor(serial)))
		return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	for _, layout := range numericLayouts[order] {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return core.Date{}, core.ErrInvalidDate
}

// toRecord renders a batch with store-native column names.
func toRecord(b core.Batch) sheets.Record {
	return sheets.Record{
		sheets.ColID:         b.ID,
		sheets.ColBatchName:  b.Name,
		sheets.ColAmount:     b.Price.Decimal(),
		sheets.ColCategory:   b.Category,
		sheets.ColDate:       b.Date.String(),
		sheets.ColClassGrade: b.ClassGrade,
	}
}

// patchRecord overwrites the patched cells of rec in place.
func patchRecord(rec sheets.Record, p core.BatchPatch) {
	if p.Name != nil {
		rec[sheets.ColBatchName] = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		rec[sheets.ColAmount] = p.Price.Decimal()
	}
	if p.Date != nil {
		rec[sheets.ColDate] = p.Date.String()
	}
	if p.ClassGrade != nil {
		rec[sheets.ColClassGrade] = strings.TrimSpace(*p.ClassGrade)
	}
}

func sameID(rec sheets.Record, id string) bool {
	return strings.TrimSpace(rec[sheets.ColID]) == strings.TrimSpace(id)
}
