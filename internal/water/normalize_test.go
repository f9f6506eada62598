package water

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqzls/waterwatch/pkg/models"
)

func boolPtr(b bool) *bool { return &b }

func row(month string, quantity, amount float64) models.BillingRow {
	return models.BillingRow{
		Month:    month,
		Quantity: models.Amount(quantity),
		Amount:   models.Amount(amount),
	}
}

func TestNormalizeEmptyRows(t *testing.T) {
	now := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)

	summary := Normalize(nil, nil, "42", now)

	assert.Equal(t, "42", summary.HouseID)
	assert.Equal(t, now.Format(time.RFC3339), summary.QueryTime)
	assert.Zero(t, summary.CurrentReading)
	assert.Zero(t, summary.YearlyVolume)
	assert.Zero(t, summary.YearlyAmount)
	assert.Zero(t, summary.MonthlyVolume)
	assert.Zero(t, summary.MonthlyAmount)
	assert.Zero(t, summary.UnpaidAmount)
	assert.Zero(t, summary.UnitPrice)
	assert.Zero(t, summary.Balance)
	assert.Empty(t, summary.MonthlyHistory)
	assert.NotNil(t, summary.MonthlyHistory)
}

func TestNormalizeUnpaidAndZeroQuantityRows(t *testing.T) {
	now := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	paid := row("2024-06-01", 10, 50)
	paid.IsPaid = boolPtr(true)

	unpaid := row("2024-07-01", 0, 0)
	unpaid.IsPaid = boolPtr(false)
	unpaid.PayableAmount = 30
	unpaid.PaidAmount = 10

	summary := Normalize([]models.BillingRow{paid, unpaid}, nil, "42", now)

	// The zero-quantity July row never reaches the history, but it is still
	// the row matched by the current-month lookup, so the monthly figures
	// are a genuine zero.
	require.Len(t, summary.MonthlyHistory, 1)
	assert.Equal(t, "2024-06-01", summary.MonthlyHistory[0].Date)
	assert.Equal(t, 10.0, summary.MonthlyHistory[0].Volume)
	assert.Equal(t, 50.0, summary.MonthlyHistory[0].Amount)
	assert.Equal(t, 20.0, summary.UnpaidAmount)
	assert.Equal(t, 0.0, summary.MonthlyVolume)
	assert.Equal(t, 0.0, summary.MonthlyAmount)
}

func TestNormalizeLatestRowWinsRegardlessOfOrder(t *testing.T) {
	now := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	older := row("2024-05-01", 8, 40)
	older.MeterIndex = 100
	older.MeterID = "M-old"
	older.UnitPrice = 4

	newest := row("2024-06-01", 10, 50)
	newest.MeterIndex = 110
	newest.MeterID = "M-new"
	newest.CostCategoryName = "residential"
	newest.UnitPrice = 5

	summary := Normalize([]models.BillingRow{newest, older}, nil, "42", now)
	assert.Equal(t, 110.0, summary.CurrentReading)
	assert.Equal(t, "M-new", summary.MeterID)
	assert.Equal(t, "residential", summary.CostCategory)
	assert.Equal(t, 5.0, summary.UnitPrice)

	// Same result with the input order reversed
	summary = Normalize([]models.BillingRow{older, newest}, nil, "42", now)
	assert.Equal(t, 110.0, summary.CurrentReading)
	assert.Equal(t, "M-new", summary.MeterID)
}

func TestNormalizeYearlyAggregatesCurrentYearOnly(t *testing.T) {
	rows := []models.BillingRow{
		row("2023-11-01", 5, 25),
		row("2023-12-01", 6, 30),
		row("2024-01-01", 7, 35),
		row("2024-02-01", 8, 40),
	}

	summary := Normalize(rows, nil, "42", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 15.0, summary.YearlyVolume)
	assert.Equal(t, 75.0, summary.YearlyAmount)

	// Shifting "now" back a year flips the aggregation set
	summary = Normalize(rows, nil, "42", time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 11.0, summary.YearlyVolume)
	assert.Equal(t, 55.0, summary.YearlyAmount)
}

func TestNormalizeHistorySortedAscending(t *testing.T) {
	rows := []models.BillingRow{
		row("2024-06-01", 10, 50),
		row("2024-01-01", 7, 35),
		row("2023-12-01", 6, 30),
		row("", 3, 15),            // empty month excluded
		row("2024-03-01", 0, 10),  // zero quantity excluded
		row("2024-04-01", -1, 10), // negative quantity excluded
	}

	summary := Normalize(rows, nil, "42", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))

	require.Len(t, summary.MonthlyHistory, 3)
	assert.Equal(t, "2023-12-01", summary.MonthlyHistory[0].Date)
	assert.Equal(t, "2024-01-01", summary.MonthlyHistory[1].Date)
	assert.Equal(t, "2024-06-01", summary.MonthlyHistory[2].Date)
}

func TestNormalizeCurrentMonthRequiresFirstOfMonth(t *testing.T) {
	// The lookup matches the month string byte-for-byte. A July row keyed to
	// any day other than the 1st leaves the monthly figures at zero, even
	// though it lands in the history.
	rows := []models.BillingRow{row("2024-07-15", 12, 60)}

	summary := Normalize(rows, nil, "42", time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 0.0, summary.MonthlyVolume)
	assert.Equal(t, 0.0, summary.MonthlyAmount)
	require.Len(t, summary.MonthlyHistory, 1)
	assert.Equal(t, 12.0, summary.MonthlyHistory[0].Volume)
}

func TestNormalizeMalformedNumbersCoerceToZero(t *testing.T) {
	raw := `[
		{"month": "2024-06-01", "quantity": "7.5", "amount": null, "meterIndex": "abc", "unitPrice": "3.1"},
		{"month": "2024-05-01", "quantity": 2}
	]`

	var rows []models.BillingRow
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))

	summary := Normalize(rows, nil, "42", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 9.5, summary.YearlyVolume)
	assert.Equal(t, 0.0, summary.YearlyAmount)
	assert.Equal(t, 0.0, summary.CurrentReading) // "abc" coerced to zero
	assert.Equal(t, 3.1, summary.UnitPrice)
	require.Len(t, summary.MonthlyHistory, 2)
	assert.Equal(t, 0.0, summary.MonthlyHistory[1].Amount)
}

func TestNormalizeRoundsToTwoDecimals(t *testing.T) {
	r := row("2024-06-01", 3.14159, 9.876)
	r.IsPaid = boolPtr(false)
	r.PayableAmount = 10.006
	r.PaidAmount = 0

	summary := Normalize([]models.BillingRow{r}, nil, "42", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 3.14, summary.YearlyVolume)
	assert.Equal(t, 9.88, summary.YearlyAmount)
	assert.Equal(t, 10.01, summary.UnpaidAmount)
	assert.Equal(t, 3.14, summary.MonthlyHistory[0].Volume)
	assert.Equal(t, 9.88, summary.MonthlyHistory[0].Amount)
}

func TestNormalizeDetailMerge(t *testing.T) {
	now := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	rows := []models.BillingRow{row("2024-06-01", 10, 50)}

	detail := &models.HouseDetail{Balance: 123.45, CustomerName: "张三", Address: "幸福小区 3-2-101"}
	summary := Normalize(rows, detail, "42", now)
	assert.Equal(t, 123.45, summary.Balance)
	assert.Equal(t, "张三", summary.CustomerName)
	assert.Equal(t, "幸福小区 3-2-101", summary.Address)

	// Absent detail degrades only balance and identity
	summary = Normalize(rows, nil, "42", now)
	assert.Zero(t, summary.Balance)
	assert.Empty(t, summary.CustomerName)
	assert.Empty(t, summary.Address)
	assert.Equal(t, 10.0, summary.YearlyVolume)
}

func TestNormalizeIdempotent(t *testing.T) {
	now := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	rows := []models.BillingRow{
		row("2024-06-01", 10, 50),
		row("2024-01-01", 7, 35),
		row("2023-12-01", 6, 30),
	}

	first := Normalize(rows, nil, "42", now)
	second := Normalize(rows, nil, "42", now)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
