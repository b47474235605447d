package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the canonical calendar date format used when writing rows.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Batch is one course offering.
	Batch struct {
		ID         string
		Name       string
		Category   string
		Price      Money
		Date       Date
		ClassGrade string
	}

	// NewBatchInput carries the caller-supplied fields of a batch about to be created.
	// The id is assigned by the repository.
	NewBatchInput struct {
		Name       string
		Category   string
		Price      Money
		Date       Date
		ClassGrade string
	}

	// BatchPatch lists the fields an update may rewrite. Nil fields are left untouched.
	// Category and ID are intentionally absent.
	BatchPatch struct {
		Name       *string
		Price      *Money
		Date       *Date
		ClassGrade *string
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty batch name")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyClass    = errors.New("empty class")
	ErrEmptyPatch    = errors.New("nothing to update")
	ErrNameTooLong   = errors.New("batch name too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MaxNameLength caps batch names, in characters.
const MaxNameLength = 200

// validateName applies the same name rules to new batches and edits.
func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func (in NewBatchInput) Validate() error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if err := in.Price.Validate(); err != nil {
		return err
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.ClassGrade) == "" {
		return ErrEmptyClass
	}
	return nil
}

// Batch builds the batch this input describes under the given id.
func (in NewBatchInput) Batch(id string) Batch {
	return Batch{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		Category:   strings.TrimSpace(in.Category),
		Price:      in.Price,
		Date:       in.Date,
		ClassGrade: strings.TrimSpace(in.ClassGrade),
	}
}

func (p BatchPatch) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := p.Price.Validate(); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return err
		}
	}
	if p.ClassGrade != nil && strings.TrimSpace(*p.ClassGrade) == "" {
		return ErrEmptyClass
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p BatchPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Date == nil && p.ClassGrade == nil
}

// Apply returns b with the patched fields overwritten. The id is preserved.
func (p BatchPatch) Apply(b Batch) Batch {
	if p.Name != nil {
		b.Name = strings.TrimSpace(*p.Name)
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Date != nil {
		b.Date = *p.Date
	}
	if p.ClassGrade != nil {
		b.ClassGrade = strings.TrimSpace(*p.ClassGrade)
	}
	return b
}
