package services

import (
	"stackqa/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

var voteOperationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stackqa_vote_operations_total",
		Help: "Vote operations by outcome",
	},
	[]string{"operation", "post", "result"},
)

func init() {
	prometheus.MustRegister(voteOperationsTotal)
}

func observeVote(op string, kind models.PostKind, err error) {
	post := string(kind)
	if _, perr := models.ParsePostKind(post); perr != nil {
		post = "invalid"
	}
	voteOperationsTotal.WithLabelValues(op, post, outcome(err)).Inc()
}

// rejectVote counts a request refused before any storage access.
func rejectVote(op string, kind models.PostKind, err error) error {
	observeVote(op, kind, err)
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isClientError(err):
		return "rejected"
	default:
		return "error"
	}
}
