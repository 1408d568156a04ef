package metrics

import "time"

// VerificationRequest records a verification request and its outcome.
func VerificationRequest(result string, candidates int, duration time.Duration) {
	if !enabled {
		return
	}
	verificationTotal.WithLabelValues(result).Inc()
	verificationDuration.WithLabelValues(result).Observe(duration.Seconds())
	verificationCandidates.Observe(float64(candidates))
}
