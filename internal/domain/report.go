package domain

import (
	"fmt"
	"time"
)

// ReportMetric names one counter packed into a ReportStatus.
type ReportMetric string

const (
	ReportApplied        ReportMetric = "applied"
	ReportRestarted      ReportMetric = "restarted"
	ReportFailed         ReportMetric = "failed"
	ReportFailedRestarts ReportMetric = "failed_restarts"
	ReportSkipped        ReportMetric = "skipped"
	ReportPending        ReportMetric = "pending"
)

const (
	reportMetricBits = 6
	reportMetricMax  = 1<<reportMetricBits - 1
)

// reportMetrics lists the counters in bit order, lowest first.
var reportMetrics = []ReportMetric{
	ReportApplied,
	ReportRestarted,
	ReportFailed,
	ReportFailedRestarts,
	ReportSkipped,
	ReportPending,
}

// ReportStatus packs six 6-bit counters into one integer.
type ReportStatus uint64

// NewReportStatus packs the given counters. Values above 63 saturate.
func NewReportStatus(counts map[ReportMetric]int) (ReportStatus, error) {
	var s ReportStatus
	for metric, n := range counts {
		shift, ok := metricShift(metric)
		if !ok {
			return 0, fmt.Errorf("unknown report metric %q", metric)
		}
		if n < 0 {
			return 0, fmt.Errorf("report metric %q is negative: %d", metric, n)
		}
		if n > reportMetricMax {
			n = reportMetricMax
		}
		s |= ReportStatus(n) << shift
	}
	return s, nil
}

// Metric returns the counter for metric, or 0 for an unknown metric.
func (s ReportStatus) Metric(metric ReportMetric) int {
	shift, ok := metricShift(metric)
	if !ok {
		return 0
	}
	return int(s>>shift) & reportMetricMax
}

// Error reports whether any resource failed to apply or restart.
func (s ReportStatus) Error() bool {
	return s.Metric(ReportFailed)+s.Metric(ReportFailedRestarts) > 0
}

// ReportMetrics returns the counters in bit order.
func ReportMetrics() []ReportMetric {
	return append([]ReportMetric(nil), reportMetrics...)
}

func metricShift(metric ReportMetric) (uint, bool) {
	for i, m := range reportMetrics {
		if m == metric {
			return uint(i * reportMetricBits), true
		}
	}
	return 0, false
}

// Report is a configuration-management run report persisted for a host.
type Report struct {
	ID         string       `json:"id"`
	HostName   string       `json:"host"`
	ReportedAt time.Time    `json:"reported_at"`
	Status     ReportStatus `json:"status"`
}

// Error reports whether the report is in an error state.
func (r Report) Error() bool {
	return r.Status.Error()
}
