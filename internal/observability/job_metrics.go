package observability

import "time"

// ObserveJob wraps a single job execution and records duration plus outcome.
// result is one of done|retry|failed.
func (p *Prom) ObserveJob(jobType string, fn func() (result string, err error)) error {
	start := time.Now()

	p.JobsInFlight.Inc()
	defer p.JobsInFlight.Dec()

	result, err := fn()

	if result == "" {
		result = "done"
		if err != nil {
			result = "failed"
		}
	}

	p.JobDuration.WithLabelValues(jobType, result).Observe(time.Since(start).Seconds())
	p.JobResults.WithLabelValues(jobType, result).Inc()

	return err
}
