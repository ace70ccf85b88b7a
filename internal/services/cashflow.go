// Package services provides business logic and orchestration services.
//
// This file implements the cash-flow projection engine: a pure function of
// (available money, bills, current day) that walks forward one calendar day
// at a time and finds the point, if any, where the running balance goes
// negative.
package services

import (
	"github.com/shopspring/decimal"

	"scadenze/internal/core"
)

// ProjectionHorizonDays bounds the forward walk. Bills due beyond the
// horizon still count toward TotalBills and RemainingMoney but produce no
// deduction entries.
const ProjectionHorizonDays = 60

// Project simulates the running balance from today over the projection
// horizon. Same-day bills are aggregated into one deduction entry. The walk
// halts as soon as the balance goes negative.
//
// Bills due strictly before today never enter the walk, yet they do count
// toward TotalBills and RemainingMoney. That asymmetry is a deliberate
// property of the projection: the walk starts at the current day.
//
// Project assumes validated input and is safe for concurrent use.
func Project(availableMoney decimal.Decimal, bills []core.Bill, today core.Date) core.ProjectionResult {
	totalBills := decimal.Zero
	billsByDay := make(map[string][]core.Bill, len(bills))
	for _, b := range bills {
		totalBills = totalBills.Add(b.Amount)
		key := b.DueDate.Key()
		billsByDay[key] = append(billsByDay[key], b)
	}

	result := core.ProjectionResult{
		TotalBills:     totalBills,
		RemainingMoney: availableMoney.Sub(totalBills),
	}

	running := availableMoney
	for i := 0; i < ProjectionHorizonDays; i++ {
		day := today.AddDays(i)
		due := billsByDay[day.Key()]
		if len(due) == 0 {
			continue
		}

		dayTotal := decimal.Zero
		for _, b := range due {
			dayTotal = dayTotal.Add(b.Amount)
		}
		running = running.Sub(dayTotal)

		result.DailyDeductions = append(result.DailyDeductions, core.DailyDeduction{
			Date:             day,
			Bills:            due,
			TotalAmount:      dayTotal,
			RemainingBalance: running,
		})

		if running.Sign() >= 0 {
			if result.SafeZoneEndDate == nil {
				d := day
				result.SafeZoneEndDate = &d
			}
		} else if result.DangerZoneStartDate == nil {
			d := day
			result.DangerZoneStartDate = &d
			// Insolvency found, nothing useful beyond this point.
			break
		}
	}

	return result
}

// ProjectNow runs Project against the current calendar day.
func ProjectNow(availableMoney decimal.Decimal, bills []core.Bill) core.ProjectionResult {
	return Project(availableMoney, bills, core.Today())
}

// DaysUntilDanger reruns the projection and reports how many days remain
// until the balance first goes negative. The second return value is false
// when no danger zone exists within the horizon.
func DaysUntilDanger(availableMoney decimal.Decimal, bills []core.Bill, today core.Date) (int, bool) {
	result := Project(availableMoney, bills, today)
	if result.DangerZoneStartDate == nil {
		return 0, false
	}
	days := today.DaysUntil(*result.DangerZoneStartDate)
	if days < 0 {
		days = 0
	}
	return days, true
}
