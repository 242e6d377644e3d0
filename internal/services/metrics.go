package services

import "github.com/prometheus/client_golang/prometheus"

var (
	submissionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact form submit attempts by terminal state.",
		},
		[]string{"state"},
	)
	storageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_storage_errors_total",
			Help: "Storage reads and writes that failed and were swallowed.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(submissionOutcomes, storageErrors)
}
