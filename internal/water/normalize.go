package water

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sqzls/waterwatch/pkg/models"
)

// Normalize flattens the raw billing rows and optional house detail into one
// UsageSummary. An empty row set is not an error; it yields a summary with
// zeroed numeric fields and an empty history.
func Normalize(rows []models.BillingRow, detail *models.HouseDetail, houseID string, now time.Time) models.UsageSummary {
	summary := models.UsageSummary{
		QueryTime:      now.Format(time.RFC3339),
		HouseID:        houseID,
		MonthlyHistory: []models.HistoryEntry{},
	}

	if detail != nil {
		summary.Balance = detail.Balance
		summary.CustomerName = detail.CustomerName
		summary.Address = detail.Address
	}

	if len(rows) == 0 {
		return summary
	}

	// The latest row carries the current meter state. Month strings are ISO
	// dates, so lexical order is chronological order.
	latest := rows[0]
	for _, row := range rows[1:] {
		if row.Month > latest.Month {
			latest = row
		}
	}
	summary.CurrentReading = latest.MeterIndex.Float()
	summary.MeterID = latest.MeterID
	summary.CostCategory = latest.CostCategoryName
	summary.UnitPrice = latest.UnitPrice.Float()

	yearPrefix := fmt.Sprintf("%d", now.Year())
	currentMonth := fmt.Sprintf("%d-%02d-01", now.Year(), int(now.Month()))

	var yearlyVol, yearlyAmt, unpaid float64
	for _, row := range rows {
		if strings.HasPrefix(row.Month, yearPrefix) {
			yearlyVol += row.Quantity.Float()
			yearlyAmt += row.Amount.Float()
		}

		if !row.Paid() {
			unpaid += row.PayableAmount.Float() - row.PaidAmount.Float()
		}

		if row.Month != "" && row.Quantity > 0 {
			summary.MonthlyHistory = append(summary.MonthlyHistory, models.HistoryEntry{
				Date:        row.Month,
				Volume:      round2(row.Quantity.Float()),
				Amount:      round2(row.Amount.Float()),
				Reading:     row.MeterIndex.Float(),
				LastReading: row.LastMeterIndex.Float(),
				UnitPrice:   row.UnitPrice.Float(),
				IsPaid:      row.Paid(),
			})
		}
	}

	summary.YearlyVolume = round2(yearlyVol)
	summary.YearlyAmount = round2(yearlyAmt)
	summary.UnpaidAmount = round2(unpaid)

	// The current-month lookup matches the month string exactly; rows not
	// keyed to the first of the month leave the monthly figures at zero.
	for _, row := range rows {
		if row.Month == currentMonth {
			summary.MonthlyVolume = round2(row.Quantity.Float())
			summary.MonthlyAmount = round2(row.Amount.Float())
			break
		}
	}

	sort.SliceStable(summary.MonthlyHistory, func(i, j int) bool {
		return summary.MonthlyHistory[i].Date < summary.MonthlyHistory[j].Date
	})

	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
