package models

import "time"

// User status values. The simulator only ever authors content as an
// editor or an AI member; user id 1 is the operations account and is
// excluded from post selection.
const (
	UserStatusEditor   = 2
	UserStatusAIMember = 6
)

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique" json:"email,omitempty"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"` // Stores avatar ID or URL
	Status   int    `gorm:"index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
