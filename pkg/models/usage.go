package models

// HistoryEntry represents one month of water usage in the summary history
type HistoryEntry struct {
	Date        string  `json:"date"`
	Volume      float64 `json:"volume"`
	Amount      float64 `json:"amount"`
	Reading     float64 `json:"reading"`
	LastReading float64 `json:"last_reading"`
	UnitPrice   float64 `json:"unit_price"`
	IsPaid      bool    `json:"is_paid"`
}

// UsageSummary is the normalized result of one fetch cycle. Numeric fields
// are always populated (zero when the source has no data) and MonthlyHistory
// is sorted ascending by date.
type UsageSummary struct {
	CurrentReading float64        `json:"current_reading"`
	YearlyVolume   float64        `json:"yearly_volume"`
	YearlyAmount   float64        `json:"yearly_amount"`
	MonthlyVolume  float64        `json:"monthly_volume"`
	MonthlyAmount  float64        `json:"monthly_amount"`
	UnpaidAmount   float64        `json:"unpaid_amount"`
	UnitPrice      float64        `json:"unit_price"`
	Balance        float64        `json:"balance"`
	QueryTime      string         `json:"querytime"`
	HouseID        string         `json:"house_id"`
	MeterID        string         `json:"meter_id"`
	CostCategory   string         `json:"cost_category"`
	CustomerName   string         `json:"customer_name"`
	Address        string         `json:"address"`
	MonthlyHistory []HistoryEntry `json:"monthly_history"`
}
