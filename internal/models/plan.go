package models

import (
	"encoding/json"
	"time"
)

// Plan is a row in the plan catalog. Prices are monthly, in the smallest
// representable unit of Currency (e.g. ARS with two decimals).
type Plan struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MonthlyPrice float64         `json:"monthly_price"`
	Currency     string          `json:"currency"`
	Features     json.RawMessage `json:"features"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IsFree reports whether subscribing to the plan requires no payment provider.
func (p *Plan) IsFree() bool {
	return p.MonthlyPrice == 0
}
