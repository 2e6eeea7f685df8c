package models

import "time"

// VoteChoice is one answer option on a post. VoteCount is a denormalized
// counter bumped with an atomic increment, never recomputed here.
type VoteChoice struct {
	ID        int    `gorm:"primaryKey" json:"id"`
	PostID    int    `gorm:"index" json:"post_id"`
	Choice    string `gorm:"not null" json:"choice"`
	VoteCount int    `gorm:"default:0" json:"vote_count"`
}

func (VoteChoice) TableName() string { return "vote_choices" }

// VoteHistory is the append-only record of who voted on what.
// UserID is null for guest votes, which are deduplicated by hashed
// session id or IP address instead.
type VoteHistory struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"index" json:"post_id"`
	UserID    *int      `gorm:"index" json:"user_id,omitempty"`
	ChoiceID  int       `json:"choice_id"`
	IPAddress *string   `json:"-"`
	SessionID *string   `gorm:"index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (VoteHistory) TableName() string { return "vote_history" }
