package autovoter

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ankeapp/anke-backend/internal/models"
)

// Store is the simulator's view of the database. Reads use fixed
// filters, orders and limits; writes are plain inserts plus one atomic
// counter increment. No multi-row transactions: a partial failure
// leaves earlier writes intact.
type Store interface {
	Settings(ctx context.Context) (map[string]string, error)
	CreatorSetting(ctx context.Context, key string) (string, error)
	UpdateSetting(ctx context.Context, key, value string) error

	PublishedPosts(ctx context.Context, excludeUserID, limit int) ([]models.Post, error)
	UsersByStatus(ctx context.Context, status, limit int) ([]models.User, error)
	VoteChoices(ctx context.Context, postID int) ([]models.VoteChoice, error)
	Comments(ctx context.Context, postID int) ([]models.Comment, error)

	InsertVote(ctx context.Context, v *models.VoteHistory) error
	IncrementVoteCount(ctx context.Context, choiceID int) error
	InsertPostLike(ctx context.Context, l *models.PostLike) error
	InsertComment(ctx context.Context, c *models.Comment) error
	InsertCommentLike(ctx context.Context, l *models.CommentLike) error
	InsertLog(ctx context.Context, l *models.AutoVoterLog) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store { return &gormStore{db: db} }

func (s *gormStore) Settings(ctx context.Context) (map[string]string, error) {
	var rows []models.AutoVoterSetting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.SettingKey] = r.SettingValue
	}
	return out, nil
}

func (s *gormStore) CreatorSetting(ctx context.Context, key string) (string, error) {
	var row models.AutoCreatorSetting
	err := s.db.WithContext(ctx).Where("setting_key = ?", key).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.SettingValue, nil
}

func (s *gormStore) UpdateSetting(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(&models.AutoVoterSetting{SettingKey: key, SettingValue: value}).Error
}

func (s *gormStore) PublishedPosts(ctx context.Context, excludeUserID, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("status = ?", models.PostStatusPublished).
		Where("user_id <> ?", excludeUserID).
		Order("created_at desc").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (s *gormStore) UsersByStatus(ctx context.Context, status, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Where("status = ?", status).Limit(limit).Find(&users).Error
	return users, err
}

func (s *gormStore) VoteChoices(ctx context.Context, postID int) ([]models.VoteChoice, error) {
	var choices []models.VoteChoice
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("id asc").Find(&choices).Error
	return choices, err
}

func (s *gormStore) Comments(ctx context.Context, postID int) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at desc").Find(&comments).Error
	return comments, err
}

func (s *gormStore) InsertVote(ctx context.Context, v *models.VoteHistory) error {
	return s.db.WithContext(ctx).Create(v).Error
}

// IncrementVoteCount bumps the denormalized counter in a single UPDATE
// so concurrent page votes and simulator votes don't lose increments.
func (s *gormStore) IncrementVoteCount(ctx context.Context, choiceID int) error {
	return s.db.WithContext(ctx).Model(&models.VoteChoice{}).
		Where("id = ?", choiceID).
		UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error
}

func (s *gormStore) InsertPostLike(ctx context.Context, l *models.PostLike) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *gormStore) InsertComment(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *gormStore) InsertCommentLike(ctx context.Context, l *models.CommentLike) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *gormStore) InsertLog(ctx context.Context, l *models.AutoVoterLog) error {
	return s.db.WithContext(ctx).Create(l).Error
}
