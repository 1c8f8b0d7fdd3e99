package model

import "time"

const noteShortLen = 50

// Note represents a text note owned by exactly one account
type Note struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"` // username of the account that created it
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Short returns a truncated preview of the note text for listings
func (n Note) Short() string {
	if len(n.Text) > noteShortLen {
		return n.Text[:noteShortLen] + "..."
	}
	return n.Text
}
