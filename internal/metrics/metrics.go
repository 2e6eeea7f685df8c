package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ankeapp/anke-backend/internal/autovoter"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anke_auto_voter_runs_total",
		Help: "Simulator runs by outcome (completed, skipped, error).",
	}, []string{"outcome"})

	VotesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anke_auto_voter_votes_total",
		Help: "Simulated votes inserted.",
	})

	CommentsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anke_auto_voter_comments_total",
		Help: "Simulated comments and replies inserted.",
	})

	PostLikesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anke_auto_voter_post_likes_total",
		Help: "Simulated post likes inserted.",
	})

	CommentLikesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anke_auto_voter_comment_likes_total",
		Help: "Simulated comment likes inserted.",
	})
)

// RecordRun folds one run result into the counters.
func RecordRun(res *autovoter.RunResult) {
	if res.Skipped {
		RunsTotal.WithLabelValues("skipped").Inc()
		return
	}
	RunsTotal.WithLabelValues("completed").Inc()
	if res.Details == nil {
		return
	}
	VotesWritten.Add(float64(res.Details.TotalVotes))
	CommentsWritten.Add(float64(res.Details.TotalComments))
	PostLikesWritten.Add(float64(res.Details.TotalPostLikes))
	CommentLikesWritten.Add(float64(res.Details.TotalCommentLikes))
}
