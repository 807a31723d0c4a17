package models

import "time"

// Interaction kinds
const (
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionMeeting = "meeting"
	InteractionNote    = "note"
)

// Contact is a CRM contact owned by a user.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interaction is a logged touchpoint with a contact.
type Interaction struct {
	ID         string    `json:"id"`
	ContactID  string    `json:"contact_id"`
	UserID     string    `json:"user_id"`
	Kind       string    `json:"kind"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Activity is a to-do item, optionally tied to a contact.
type Activity struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	ContactID *string    `json:"contact_id,omitempty"`
	Title     string     `json:"title"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
