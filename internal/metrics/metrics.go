// Package metrics provides Prometheus metrics for the explorer tree.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchRequests counts FetchChildren calls by outcome
	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_fetch_requests_total",
			Help: "Total number of child fetch requests",
		},
		[]string{"outcome"},
	)

	// BackendListings counts listings actually sent to the backend
	BackendListings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_backend_listings_total",
			Help: "Total number of directory listings issued to the backend",
		},
		[]string{"status"},
	)

	// CoalescedFetches counts fetches that shared another caller's listing
	CoalescedFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_fetch_coalesced_total",
			Help: "Total number of fetches served by an in-flight listing",
		},
	)

	// DiscardedFetches counts listings dropped because the node left the tree
	DiscardedFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_fetch_discarded_total",
			Help: "Total number of listings discarded for detached directories",
		},
	)

	mergeChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorer_merge_children_total",
			Help: "Children changed by reconciliation",
		},
		[]string{"change"},
	)

	nestedEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "explorer_nested_entries_total",
			Help: "Total number of entries grouped under a primary by file nesting",
		},
	)
)

// RecordFetch records the outcome of a FetchChildren call
func RecordFetch(outcome string) {
	FetchRequests.WithLabelValues(outcome).Inc()
}

// RecordListing records a backend listing
func RecordListing(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	BackendListings.WithLabelValues(status).Inc()
}

// RecordMerge records reconciliation results
func RecordMerge(added, kept, removed int) {
	mergeChanges.WithLabelValues("added").Add(float64(added))
	mergeChanges.WithLabelValues("kept").Add(float64(kept))
	mergeChanges.WithLabelValues("removed").Add(float64(removed))
}

// RecordNested records the number of entries grouped by one nesting pass
func RecordNested(n int) {
	nestedEntries.Add(float64(n))
}
