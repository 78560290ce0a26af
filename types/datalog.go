package types

import "time"

// DataLog is an audit entry describing an action taken by a user.
//
// UserFullname and UserRole are copies of the actor's profile taken when
// the entry was written; they are not updated when the user changes.
type DataLog struct {
	ID           int            `json:"id" db:"id"`
	UserID       int            `json:"user_id" db:"user_id"`
	UserFullname string         `json:"user_fullname" db:"user_fullname"`
	UserRole     string         `json:"user_role" db:"user_role"`
	Action       string         `json:"action" db:"action"`
	Parameter    map[string]any `json:"parameter" db:"parameter"`
	FileName     *string        `json:"file_name" db:"file_name"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
