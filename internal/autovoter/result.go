package autovoter

// RunResult is the JSON-facing summary of one simulator run. Shapes are
// stable: the admin UI renders details and per-post breakdowns from it.
type RunResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Skipped bool        `json:"skipped,omitempty"`
	Details *RunDetails `json:"details,omitempty"`
}

type RunDetails struct {
	ProcessedPosts    int          `json:"processed_posts"`
	TotalVotes        int          `json:"total_votes"`
	TotalComments     int          `json:"total_comments"`
	TotalPostLikes    int          `json:"total_post_likes"`
	TotalCommentLikes int          `json:"total_comment_likes"`
	PostsDetails      []PostDetail `json:"posts_details"`
	SettingsUsed      SettingsUsed `json:"settings_used"`
}

// PostDetail is the result-per-unit accumulator for one post: counters
// plus any comment-action errors, which never abort the batch.
type PostDetail struct {
	PostID            int      `json:"post_id"`
	Title             string   `json:"title"`
	CategoryID        int      `json:"category_id"`
	VotesAdded        int      `json:"votes_added"`
	CommentsAdded     int      `json:"comments_added"`
	PostLikesAdded    int      `json:"post_likes_added"`
	CommentLikesAdded int      `json:"comment_likes_added"`
	Priority          float64  `json:"priority"`
	CommentErrors     []string `json:"comment_errors,omitempty"`
}

// SettingsUsed echoes the resolved numeric parameters of the run.
type SettingsUsed struct {
	PostsPerRun         int `json:"posts_per_run"`
	VotesPerRun         int `json:"votes_per_run"`
	VotesVariance       int `json:"votes_variance"`
	AIMemberProbability int `json:"ai_member_probability"`
	PostLikeProbability int `json:"post_like_probability"`
	LikeProbability     int `json:"like_probability"`
	CommentsPerRun      int `json:"comments_per_run"`
	MaxCommentsPerPost  int `json:"max_comments_per_post"`
	MaxCommentsVariance int `json:"max_comments_variance"`
}

func settingsUsed(s Settings) SettingsUsed {
	return SettingsUsed{
		PostsPerRun:         s.PostsPerRun,
		VotesPerRun:         s.VotesPerRun,
		VotesVariance:       s.VotesVariance,
		AIMemberProbability: s.AIMemberProbability,
		PostLikeProbability: s.PostLikeProbability,
		LikeProbability:     s.LikeProbability,
		CommentsPerRun:      s.CommentsPerRun,
		MaxCommentsPerPost:  s.MaxCommentsPerPost,
		MaxCommentsVariance: s.MaxCommentsVariance,
	}
}
