package models

import "time"

// PostLike and CommentLike carry no uniqueness constraint on
// (target, user): the simulator inserts without an existence check and
// duplicate likes from the same account are possible across runs.

type PostLike struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"index" json:"post_id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentLike struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	CommentID int       `gorm:"index" json:"comment_id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
