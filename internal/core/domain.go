package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	FreqNone      NotificationFrequency = "none"
	FreqOneDay    NotificationFrequency = "1_day"
	FreqThreeDays NotificationFrequency = "3_days"
	FreqOneWeek   NotificationFrequency = "1_week"
	FreqTwoWeeks  NotificationFrequency = "2_weeks"
)

type (
	// NotificationFrequency selects how far ahead of the due date a
	// reminder email should go out.
	NotificationFrequency string

	// Date is a calendar day. The wrapped time is always midnight UTC and
	// comparisons are by day only.
	Date struct {
		time.Time
	}

	// Bill is a single upcoming payment owned by exactly one user.
	Bill struct {
		ID              string
		Name            string
		Amount          decimal.Decimal
		DueDate         Date
		Frequency       NotificationFrequency
		ReminderEnabled bool
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	// Profile is the application-side user row. ID is the identity issued
	// by the auth provider and is authoritative once established; Email is
	// the expected-unique business key used as a fallback lookup.
	Profile struct {
		ID             string
		Email          string
		IsPremium      bool
		AvailableMoney decimal.Decimal
		CreatedAt      time.Time
	}

	// BillPatch carries the mutable bill fields for partial updates.
	// Nil fields are left untouched.
	BillPatch struct {
		Name            *string
		Amount          *decimal.Decimal
		DueDate         *Date
		Frequency       *NotificationFrequency
		ReminderEnabled *bool
	}

	// ReminderBill pairs a reminder-enabled bill with its owner's email so
	// the worker can address the reminder without a second lookup.
	ReminderBill struct {
		Bill       Bill
		OwnerEmail string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty bill name")
	ErrInvalidDueDate   = errors.New("invalid due date")
	ErrInvalidFrequency = errors.New("invalid notification frequency")
	ErrEmptyEmail       = errors.New("empty email")

	ErrBillNotFound    = errors.New("bill not found")
	ErrProfileNotFound = errors.New("profile not found")

	// ErrReconcileFailed marks a profile merge that started but did not
	// complete. Callers must not treat the user as resolved when they see it.
	ErrReconcileFailed = errors.New("profile reconciliation failed")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary timestamp to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Key returns the canonical yyyy-mm-dd form, used for grouping and storage.
func (d Date) Key() string {
	return d.Time.Format("2006-01-02")
}

// DaysUntil returns the number of whole days from d to other.
// Negative when other is in the past relative to d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// ParseDate parses the canonical yyyy-mm-dd form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDueDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDueDate
	}
	return nil
}

func (f NotificationFrequency) Validate() error {
	switch f {
	case FreqNone, FreqOneDay, FreqThreeDays, FreqOneWeek, FreqTwoWeeks:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return errors.New("bill name too long (max 200 characters)")
	}
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := b.DueDate.Validate(); err != nil {
		return err
	}
	return b.Frequency.Validate()
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("empty profile id")
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmptyEmail
	}
	if p.AvailableMoney.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
