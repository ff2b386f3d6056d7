package telegram

import "time"

// Chat is a telegram chat that sent /start.
type Chat struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	Since     time.Time `json:"since"`
}
