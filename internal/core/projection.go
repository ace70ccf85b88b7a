package core

import "github.com/shopspring/decimal"

// DailyDeduction is one day of the projection walk on which at least one
// bill falls due. Bills keeps each contributing bill individually for
// display and auditing; TotalAmount is their sum.
type DailyDeduction struct {
	Date             Date
	Bills            []Bill
	TotalAmount      decimal.Decimal
	RemainingBalance decimal.Decimal
}

// ProjectionResult is the outcome of a cash-flow projection.
//
// TotalBills and RemainingMoney cover every bill regardless of due date;
// the zone dates and DailyDeductions cover only the forward walk.
// DailyDeductions is strictly ordered by date ascending with at most one
// entry per day, and each entry's RemainingBalance equals the previous
// entry's balance minus its own TotalAmount.
type ProjectionResult struct {
	TotalBills          decimal.Decimal
	RemainingMoney      decimal.Decimal
	SafeZoneEndDate     *Date
	DangerZoneStartDate *Date
	DailyDeductions     []DailyDeduction
}
