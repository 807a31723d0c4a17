package models

import (
	"encoding/json"
	"time"
)

// Site is the builder output for a business: one site per business, addressed
// publicly by subdomain. Style and Content are opaque JSON documents owned by
// the frontend editor.
type Site struct {
	ID         string          `json:"id"`
	BusinessID string          `json:"business_id"`
	Subdomain  string          `json:"subdomain"`
	Published  bool            `json:"published"`
	Style      json.RawMessage `json:"style"`
	Content    json.RawMessage `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
