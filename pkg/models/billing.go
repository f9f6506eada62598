package models

import (
	"strconv"
	"strings"
)

// Amount is a numeric field as the billing API sends it: a JSON number, a
// numeric string, null, or missing entirely. Anything unusable decodes to 0.
type Amount float64

// UnmarshalJSON never returns an error; malformed values become zero
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(v)
	return nil
}

// Float returns the amount as a plain float64
func (a Amount) Float() float64 {
	return float64(a)
}

// BillingRow is one monthly record from the billing-list endpoint. Month is
// an ISO date string truncated to the first of the month.
type BillingRow struct {
	Month            string `json:"month"`
	Quantity         Amount `json:"quantity"`
	Amount           Amount `json:"amount"`
	PayableAmount    Amount `json:"payableAmount"`
	PaidAmount       Amount `json:"paidAmount"`
	IsPaid           *bool  `json:"isPaid"`
	MeterIndex       Amount `json:"meterIndex"`
	LastMeterIndex   Amount `json:"lastMeterIndex"`
	UnitPrice        Amount `json:"unitPrice"`
	MeterID          string `json:"meterId"`
	CostCategoryName string `json:"costCategoryName"`
}

// Paid reports whether the row is settled. The API omits isPaid on some
// rows; those count as paid, matching the upstream default.
func (r *BillingRow) Paid() bool {
	return r.IsPaid == nil || *r.IsPaid
}

// HouseDetail holds the account fields from the house endpoint
type HouseDetail struct {
	Balance      float64
	CustomerName string
	Address      string
}
