package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionTotal tracks graded participations.
	SubmissionTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizstats_submission_total",
			Help: "Total number of graded participations",
		},
	)

	// SubmissionScore tracks the distribution of participation scores.
	SubmissionScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quizstats_submission_score",
			Help:    "Scores of graded participations (0-100)",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	// ReportComputedTotal tracks statistics reports built from scratch (cache misses).
	ReportComputedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizstats_report_computed_total",
			Help: "Total number of quiz statistics reports computed",
		},
	)

	// QuizChangeTotal tracks authoring operations by kind (create, update, delete).
	QuizChangeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizstats_quiz_change_total",
			Help: "Total number of quiz authoring operations by kind",
		},
		[]string{"op"},
	)
)

// RecordSubmission records a graded participation and its score.
func RecordSubmission(score int) {
	SubmissionTotal.Inc()
	SubmissionScore.Observe(float64(score))
}

// RecordReportComputed records a statistics report computation.
func RecordReportComputed() {
	ReportComputedTotal.Inc()
}

// RecordQuizChange records an authoring operation.
func RecordQuizChange(op string) {
	QuizChangeTotal.WithLabelValues(op).Inc()
}
