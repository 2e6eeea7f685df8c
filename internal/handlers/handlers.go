package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ankeapp/anke-backend/internal/autovoter"
)

// Handler combines all handler types
type Handler struct {
	Post      *PostHandler
	Comment   *CommentHandler
	Vote      *VoteHandler
	User      *UserHandler
	AutoVoter *AutoVoterHandler
	Settings  *SettingsHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, engine *autovoter.Engine, store autovoter.Store, cronSecret string, log *zap.Logger) *Handler {
	return &Handler{
		Post:      NewPostHandler(db),
		Comment:   NewCommentHandler(db),
		Vote:      NewVoteHandler(db),
		User:      NewUserHandler(db),
		AutoVoter: NewAutoVoterHandler(engine, store, cronSecret, log),
		Settings:  NewSettingsHandler(db),
	}
}
