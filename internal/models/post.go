package models

import "time"

// Post statuses follow a WordPress-style lifecycle; the simulator only
// ever touches published posts.
const (
	PostStatusPublished = "published"
	PostStatusDraft     = "draft"
)

type Post struct {
	ID         int          `gorm:"primaryKey" json:"id"`
	Title      string       `gorm:"not null" json:"title"`
	Content    string       `json:"content"`
	CategoryID int          `gorm:"index" json:"category_id"`
	UserID     int          `gorm:"index" json:"user_id"`
	User       User         `gorm:"foreignKey:UserID" json:"user"`
	Status     string       `gorm:"index;default:published" json:"status"`
	TotalVotes int          `gorm:"default:0" json:"total_votes"`
	Choices    []VoteChoice `gorm:"foreignKey:PostID" json:"choices,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
