package models

import "time"

type Comment struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"index" json:"post_id"`
	UserID    int       `json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	ParentID  *int      `gorm:"index" json:"parent_id,omitempty"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTopLevel reports whether the comment is a direct comment on the
// post rather than a reply. Only top-level comments are valid reply
// targets for the simulator.
func (c Comment) IsTopLevel() bool { return c.ParentID == nil || *c.ParentID == 0 }
