// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for reminder dueness checking.
// Each notification frequency maps to a checker that decides whether a
// reminder for a bill should go out on a given day.

package services

import (
	"fmt"

	"scadenze/internal/core"
)

// ReminderChecker is the strategy interface for reminder dueness.
type ReminderChecker interface {
	// IsDue returns true if a reminder for a bill due on dueDate should be
	// sent on today.
	IsDue(dueDate, today core.Date) bool
}

// NeverChecker implements ReminderChecker for bills without notifications.
type NeverChecker struct{}

func (NeverChecker) IsDue(_, _ core.Date) bool { return false }

// LeadDaysChecker fires exactly once, Days calendar days before the due
// date. Running the scan once per day therefore produces one reminder per
// bill.
type LeadDaysChecker struct {
	Days int
}

func (c LeadDaysChecker) IsDue(dueDate, today core.Date) bool {
	return dueDate.AddDays(-c.Days).Key() == today.Key()
}

// reminderStrategies maps notification frequencies to their checkers.
var reminderStrategies = map[core.NotificationFrequency]ReminderChecker{
	core.FreqNone:      NeverChecker{},
	core.FreqOneDay:    LeadDaysChecker{Days: 1},
	core.FreqThreeDays: LeadDaysChecker{Days: 3},
	core.FreqOneWeek:   LeadDaysChecker{Days: 7},
	core.FreqTwoWeeks:  LeadDaysChecker{Days: 14},
}

// GetReminderChecker returns the checker for a notification frequency.
func GetReminderChecker(frequency core.NotificationFrequency) (ReminderChecker, error) {
	checker, ok := reminderStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown notification frequency: %s", frequency)
	}
	return checker, nil
}
