// Package gather implements the result-gathering utility: block on a batch
// of jobs and return a map or list of their outcomes.
package gather

import (
	"time"

	"github.com/arborio/taskflow/internal/telemetry"
	"github.com/arborio/taskflow/job"
)

// Options configures Results.
type Options struct {
	// Timeout bounds how long to wait for each job (0 means wait
	// indefinitely).
	Timeout time.Duration
	// Default is substituted for a job that fails or times out, unless
	// RaiseOnError is set.
	Default any
	// RaiseOnError, if true, makes Results return the first encountered
	// job error instead of substituting Default.
	RaiseOnError bool
	// ResultsOnly, if true, makes Results return a []any of outcomes in
	// job order instead of a map keyed by name/id.
	ResultsOnly bool
	// Log receives a warning for every job that fails (a timed-out job is
	// not logged). It defaults to a no-op logger.
	Log *telemetry.Logger
}

// Results blocks on every job in jobs and returns their outcomes.
//
// Keying (when ResultsOnly is false): by job name; if two or more jobs
// share a name, the second and later occurrences are keyed by job id
// instead, so no outcome is silently dropped.
func Results(jobs []*job.Job, opts Options) (any, error) {
	log := opts.Log
	if log == nil {
		log = telemetry.Noop()
	}

	seenNames := make(map[string]bool, len(jobs))
	keys := make([]string, 0, len(jobs))
	values := make(map[string]any, len(jobs))

	for _, j := range jobs {
		val, err := j.WaitForResult(opts.Timeout, opts.Default)
		if err != nil {
			if opts.RaiseOnError {
				return nil, err
			}
			log.Warn("job failed", "job", j.Name(), "error", err)
			val = opts.Default
		}

		key := j.Name()
		if seenNames[key] {
			key = j.ID().String()
		} else {
			seenNames[key] = true
		}
		keys = append(keys, key)
		values[key] = val
	}

	if opts.ResultsOnly {
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = values[k]
		}
		return out, nil
	}
	return values, nil
}
