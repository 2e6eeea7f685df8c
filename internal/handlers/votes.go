package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ankeapp/anke-backend/internal/middleware"
	"github.com/ankeapp/anke-backend/internal/models"
)

type VoteHandler struct {
	db *gorm.DB
}

func NewVoteHandler(db *gorm.DB) *VoteHandler {
	return &VoteHandler{db: db}
}

// Vote records a reader's vote. Logged-in users are deduplicated by
// user id; guests by hashed session id, falling back to IP address.
// Multi-select posts send an array of choice ids but only the first one
// lands in vote_history.
func (h *VoteHandler) Vote(c *gin.Context) {
	var input struct {
		ChoiceID  json.RawMessage `json:"choiceId"`
		PostID    int             `json:"postId"`
		SessionID string          `json:"sessionId"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "選択肢IDと投稿IDが必要です"})
		return
	}

	choiceIDs := parseChoiceIDs(input.ChoiceID)
	if len(choiceIDs) == 0 || input.PostID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "選択肢IDと投稿IDが必要です"})
		return
	}

	// Session ids are hashed before storage.
	var hashedSession *string
	if input.SessionID != "" {
		sum := sha256.Sum256([]byte(input.SessionID))
		s := hex.EncodeToString(sum[:])
		hashedSession = &s
	}
	ip := c.ClientIP()

	userID, authed := middleware.UserID(c)

	var existing int64
	switch {
	case authed:
		h.db.Model(&models.VoteHistory{}).
			Where("post_id = ? AND user_id = ?", input.PostID, userID).
			Count(&existing)
	case hashedSession != nil:
		h.db.Model(&models.VoteHistory{}).
			Where("post_id = ? AND session_id = ?", input.PostID, *hashedSession).
			Count(&existing)
	case ip != "":
		h.db.Model(&models.VoteHistory{}).
			Where("post_id = ? AND ip_address = ? AND session_id IS NULL", input.PostID, ip).
			Count(&existing)
	}
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "既に投票済みです"})
		return
	}

	for _, id := range choiceIDs {
		var choice models.VoteChoice
		if err := h.db.First(&choice, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "選択肢が見つかりません"})
			return
		}
		err := h.db.Model(&models.VoteChoice{}).
			Where("id = ?", id).
			UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "投票の更新に失敗しました"})
			return
		}
	}

	// Recalculate the post's total from its choices.
	var total int64
	h.db.Model(&models.VoteChoice{}).
		Where("post_id = ?", input.PostID).
		Select("COALESCE(SUM(vote_count), 0)").
		Scan(&total)
	h.db.Model(&models.Post{}).Where("id = ?", input.PostID).Update("total_votes", total)

	vote := models.VoteHistory{
		PostID:    input.PostID,
		ChoiceID:  choiceIDs[0],
		SessionID: hashedSession,
	}
	if authed {
		vote.UserID = &userID
	}
	if ip != "" {
		vote.IPAddress = &ip
	}
	if err := h.db.Create(&vote).Error; err != nil {
		// History is best-effort once the counters are updated.
		c.JSON(http.StatusOK, gin.H{"success": true, "total_votes": total})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "total_votes": total})
}

// parseChoiceIDs accepts both a bare id and an array of ids, matching
// the frontend's single- and multi-select payloads.
func parseChoiceIDs(raw json.RawMessage) []int {
	if len(raw) == 0 {
		return nil
	}
	var many []int
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	var one int
	if err := json.Unmarshal(raw, &one); err == nil && one != 0 {
		return []int{one}
	}
	return nil
}
