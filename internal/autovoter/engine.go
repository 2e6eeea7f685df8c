package autovoter

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ankeapp/anke-backend/internal/models"
)

// AdminUserID is the operations account; its posts are never targeted.
const AdminUserID = 1

// userPoolLimit caps how many candidate actors are fetched per pick.
const userPoolLimit = 50

// Config is the process-level part of the engine's configuration. The
// behavioral knobs come from the settings table on every run.
type Config struct {
	// EnvAPIKey is the fallback when auto_creator_settings has no
	// openai_api_key row.
	EnvAPIKey string
	Model     string
	BaseURL   string
}

// Engine runs one batch of simulated engagement: select posts, then per
// post cast votes, maybe like, and perform at most one comment-type
// action. Everything is sequential within a single invocation; two
// overlapping invocations are not mutually excluded.
type Engine struct {
	store Store
	cfg   Config
	log   *zap.Logger

	rng          *rand.Rand
	now          func() time.Time
	newCompleter func(apiKey string) Completer
}

type Option func(*Engine)

// WithClock overrides the wall clock, used to pin blackout-window tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand overrides the random source for deterministic tests. The
// replacement is used as-is, without the locking the default source
// carries; callers must stay single-goroutine.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithCompleterFactory overrides how the per-run LLM client is built.
func WithCompleterFactory(fn func(apiKey string) Completer) Option {
	return func(e *Engine) { e.newCompleter = fn }
}

// lockedSource serializes access to a rand source. One Engine backs
// every trigger handler and overlapping runs are allowed, so draws can
// come from concurrent goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

func New(store Store, cfg Config, log *zap.Logger, opts ...Option) *Engine {
	src := rand.NewSource(time.Now().UnixNano()).(rand.Source64)
	e := &Engine{
		store: store,
		cfg:   cfg,
		log:   log,
		rng:   rand.New(&lockedSource{src: src}),
		now:   time.Now,
	}
	e.newCompleter = func(apiKey string) Completer {
		return NewChatClient(apiKey, cfg.Model, cfg.BaseURL)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one full batch and returns its summary. Only settings
// and post lookup failures are returned as errors; everything below the
// per-post level is accumulated into the result instead.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	raw, err := e.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s := ParseSettings(raw)
	now := e.now()

	if s.InNoRunWindow(now) {
		e.log.Info("skipping run inside no-run window",
			zap.String("window", s.NoRunStart+" - "+s.NoRunEnd),
			zap.String("now", now.Format("15:04")))
		return &RunResult{
			Success: true,
			Message: fmt.Sprintf("実行しない時間帯のためスキップしました (%s - %s)", s.NoRunStart, s.NoRunEnd),
			Skipped: true,
		}, nil
	}

	apiKey, err := e.store.CreatorSetting(ctx, "openai_api_key")
	if err != nil {
		e.log.Warn("failed to read openai_api_key setting", zap.Error(err))
	}
	if apiKey == "" {
		apiKey = e.cfg.EnvAPIKey
	}
	if apiKey == "" {
		e.log.Error("openai api key is not configured; comment actions will fail")
	}
	llm := e.newCompleter(apiKey)

	e.log.Info("auto voter run starting",
		zap.Int("posts_per_run", s.PostsPerRun),
		zap.Int("votes_per_run", s.VotesPerRun),
		zap.Int("votes_variance", s.VotesVariance),
		zap.Int("ai_member_probability", s.AIMemberProbability),
		zap.Bool("prioritize_recent_posts", s.PrioritizeRecentPosts))

	posts, err := e.store.PublishedPosts(ctx, AdminUserID, 100)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	if len(posts) == 0 {
		return &RunResult{
			Success: true,
			Message: "対象記事が見つかりませんでした（published状態の記事が存在しません）",
			Details: &RunDetails{PostsDetails: []PostDetail{}, SettingsUsed: settingsUsed(s)},
		}, nil
	}

	selected := SelectPosts(posts, s, now)

	details := &RunDetails{
		ProcessedPosts: len(selected),
		PostsDetails:   make([]PostDetail, 0, len(selected)),
		SettingsUsed:   settingsUsed(s),
	}

	for _, post := range selected {
		d := e.processPost(ctx, llm, s, post)
		details.TotalVotes += d.VotesAdded
		details.TotalComments += d.CommentsAdded
		details.TotalPostLikes += d.PostLikesAdded
		details.TotalCommentLikes += d.CommentLikesAdded
		details.PostsDetails = append(details.PostsDetails, d)
	}

	result := &RunResult{
		Success: true,
		Message: fmt.Sprintf("%d件の記事に%d票を投票、%d件のコメント、%d件の投票いいね、%d件のコメントいいねを追加しました",
			len(selected), details.TotalVotes, details.TotalComments, details.TotalPostLikes, details.TotalCommentLikes),
		Details: details,
	}

	e.log.Info("auto voter run finished",
		zap.Int("processed_posts", details.ProcessedPosts),
		zap.Int("total_votes", details.TotalVotes),
		zap.Int("total_comments", details.TotalComments))

	return result, nil
}

// processPost performs all actions for one selected post. Failures are
// isolated per action: a vote insert error doesn't stop the next vote,
// and an LLM failure doesn't touch the vote counts.
func (e *Engine) processPost(ctx context.Context, llm Completer, s Settings, post ScoredPost) PostDetail {
	d := PostDetail{
		PostID:     post.ID,
		Title:      post.Title,
		CategoryID: post.CategoryID,
		Priority:   post.Priority,
	}

	votes := actualVotes(e.rng, s)
	for i := 0; i < votes; i++ {
		ok, err := e.castVote(ctx, s, post.ID)
		if err != nil {
			e.log.Warn("vote failed", zap.Int("post_id", post.ID), zap.Error(err))
			continue
		}
		if ok {
			d.VotesAdded++
		}
	}

	if chance(e.rng, s.PostLikeProbability) {
		user, err := e.pickActor(ctx, s)
		if err != nil {
			e.log.Warn("post like failed", zap.Int("post_id", post.ID), zap.Error(err))
		} else if user != nil {
			like := &models.PostLike{PostID: post.ID, UserID: user.ID}
			if err := e.store.InsertPostLike(ctx, like); err != nil {
				e.log.Warn("post like failed", zap.Int("post_id", post.ID), zap.Error(err))
			} else {
				d.PostLikesAdded++
			}
		}
	}

	e.processComments(ctx, llm, s, post, &d)
	return d
}

// processComments runs the comment state machine: a post without
// comments can only receive a first comment (optionally followed by a
// comment-like); a post with comments gets exactly one action sampled
// uniformly from whatever is currently eligible.
func (e *Engine) processComments(ctx context.Context, llm Completer, s Settings, post ScoredPost, d *PostDetail) {
	comments, err := e.store.Comments(ctx, post.ID)
	if err != nil {
		e.log.Warn("failed to load comments", zap.Int("post_id", post.ID), zap.Error(err))
		return
	}

	remaining := commentBudget(e.rng, s, len(comments))

	if len(comments) == 0 {
		if remaining > 0 && s.CommentPrompt != "" {
			e.newComment(ctx, llm, s, post, d, true)
		}
		return
	}

	parents := topLevelComments(comments)
	actions := EligibleActions(remaining, len(parents), s.CommentPrompt, s.ReplyPrompt)
	if len(actions) == 0 {
		return
	}

	switch action := pickAction(e.rng, actions); action {
	case ActionNewComment:
		e.newComment(ctx, llm, s, post, d, false)
	case ActionUserReply:
		e.reply(ctx, llm, s, post, parents, d, false)
	case ActionAuthorReply:
		e.reply(ctx, llm, s, post, parents, d, true)
	}
}

// castVote inserts one simulated vote. Returns (false, nil) when no
// actor or choice is available, which is a no-op rather than an error.
func (e *Engine) castVote(ctx context.Context, s Settings, postID int) (bool, error) {
	user, err := e.pickActor(ctx, s)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}

	choices, err := e.store.VoteChoices(ctx, postID)
	if err != nil {
		return false, err
	}
	if len(choices) == 0 {
		return false, nil
	}
	choice := choices[e.rng.Intn(len(choices))]

	userID := user.ID
	vote := &models.VoteHistory{PostID: postID, UserID: &userID, ChoiceID: choice.ID}
	if err := e.store.InsertVote(ctx, vote); err != nil {
		return false, err
	}
	// If the increment fails the history row stays: best-effort
	// simulation, no compensating rollback.
	if err := e.store.IncrementVoteCount(ctx, choice.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) newComment(ctx context.Context, llm Completer, s Settings, post ScoredPost, d *PostDetail, withLike bool) {
	status := e.actorStatus(s)
	user, err := e.pickUser(ctx, status)
	if err != nil {
		e.log.Warn("comment actor lookup failed", zap.Int("post_id", post.ID), zap.Error(err))
		return
	}
	if user == nil {
		return
	}

	choicesText, err := e.choicesText(ctx, post.ID)
	if err != nil {
		e.log.Warn("choice lookup failed", zap.Int("post_id", post.ID), zap.Error(err))
		return
	}

	prompt := RenderCommentPrompt(s.CommentPrompt, post.Title, post.Content, choicesText)
	text, err := llm.Complete(ctx, prompt)
	if err != nil {
		d.CommentErrors = append(d.CommentErrors, err.Error())
		return
	}

	comment := &models.Comment{PostID: post.ID, UserID: user.ID, Content: text}
	if err := e.store.InsertComment(ctx, comment); err != nil {
		d.CommentErrors = append(d.CommentErrors, "コメント挿入エラー: "+err.Error())
		return
	}
	d.CommentsAdded++

	// Only the very first comment on a post may attract an immediate
	// like; the like actor comes from the same pool as the commenter.
	if withLike && chance(e.rng, s.LikeProbability) {
		likeUser, err := e.pickUser(ctx, status)
		if err != nil || likeUser == nil {
			if err != nil {
				e.log.Warn("comment like failed", zap.Int("post_id", post.ID), zap.Error(err))
			}
			return
		}
		like := &models.CommentLike{CommentID: comment.ID, UserID: likeUser.ID}
		if err := e.store.InsertCommentLike(ctx, like); err != nil {
			e.log.Warn("comment like failed", zap.Int("post_id", post.ID), zap.Error(err))
			return
		}
		d.CommentLikesAdded++
	}
}

// reply posts a reply to a uniformly chosen top-level comment, authored
// either by a pool actor or unconditionally by the post's author.
func (e *Engine) reply(ctx context.Context, llm Completer, s Settings, post ScoredPost, parents []models.Comment, d *PostDetail, asAuthor bool) {
	target := parents[e.rng.Intn(len(parents))]

	authorID := post.UserID
	if !asAuthor {
		user, err := e.pickActor(ctx, s)
		if err != nil {
			e.log.Warn("reply actor lookup failed", zap.Int("post_id", post.ID), zap.Error(err))
			return
		}
		if user == nil {
			return
		}
		authorID = user.ID
	}

	choicesText, err := e.choicesText(ctx, post.ID)
	if err != nil {
		e.log.Warn("choice lookup failed", zap.Int("post_id", post.ID), zap.Error(err))
		return
	}

	prompt := RenderReplyPrompt(s.ReplyPrompt, target.Content, post.Title, post.Content, choicesText)
	text, err := llm.Complete(ctx, prompt)
	if err != nil {
		d.CommentErrors = append(d.CommentErrors, err.Error())
		return
	}

	parentID := target.ID
	comment := &models.Comment{PostID: post.ID, UserID: authorID, ParentID: &parentID, Content: text}
	if err := e.store.InsertComment(ctx, comment); err != nil {
		d.CommentErrors = append(d.CommentErrors, "コメント挿入エラー: "+err.Error())
		return
	}
	d.CommentsAdded++
}

func (e *Engine) actorStatus(s Settings) int {
	if chance(e.rng, s.AIMemberProbability) {
		return models.UserStatusAIMember
	}
	return models.UserStatusEditor
}

// pickActor rolls the AI-member/editor split and picks a uniform user
// from the chosen pool. Nil without error means the pool is empty.
func (e *Engine) pickActor(ctx context.Context, s Settings) (*models.User, error) {
	return e.pickUser(ctx, e.actorStatus(s))
}

func (e *Engine) pickUser(ctx context.Context, status int) (*models.User, error) {
	users, err := e.store.UsersByStatus(ctx, status, userPoolLimit)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	u := users[e.rng.Intn(len(users))]
	return &u, nil
}

func (e *Engine) choicesText(ctx context.Context, postID int) (string, error) {
	choices, err := e.store.VoteChoices(ctx, postID)
	if err != nil {
		return "", err
	}
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Choice
	}
	return ChoicesText(labels), nil
}
