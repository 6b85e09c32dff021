// Package triage assigns a processing priority to incoming claims. It
// consults an external advisory oracle under a hard timeout and degrades to a
// deterministic standard-priority result on any failure, so claim intake is
// never blocked by the oracle being slow, down, or incoherent.
package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/claimwise/claimwise/internal/platform/metrics"
)

const (
	PriorityUrgent   = "URGENT"
	PriorityStandard = "STANDARD"
	PriorityRoutine  = "ROUTINE"
)

// ErrInvalidInput marks a caller bug: missing codes or a non-positive amount.
// This is the one failure Classify surfaces instead of absorbing.
var ErrInvalidInput = errors.New("triage: invalid input")

// ErrMalformedAdvice is returned by an Oracle whose response could not be
// parsed into the expected three-field shape.
var ErrMalformedAdvice = errors.New("triage: malformed advisory response")

// Request carries the clinical and cost features the oracle sees.
type Request struct {
	CPTCode      string
	ICD10Code    string
	BilledAmount float64
	PatientDOB   *time.Time
}

// Result is the classification outcome. Exactly three fields, always
// populated: a valid priority, a confidence in [0,1], and a non-empty
// reasoning string.
type Result struct {
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func validPriority(p string) bool {
	return p == PriorityUrgent || p == PriorityStandard || p == PriorityRoutine
}

// Oracle is the external advisory service consulted for urgency.
type Oracle interface {
	Advise(ctx context.Context, req Request) (Result, error)
}

// Config tunes the classifier.
type Config struct {
	Enabled          bool
	Timeout          time.Duration
	UrgentThreshold  float64
	RoutineThreshold float64
}

// Classifier races a single oracle call against Config.Timeout. The losing
// branch is cancelled through the context; its result, if any, is discarded.
type Classifier struct {
	oracle Oracle
	cfg    Config
	logger zerolog.Logger
}

// NewClassifier builds a classifier. A nil oracle means no credential is
// configured; classification then short-circuits to the standard fallback.
func NewClassifier(oracle Oracle, cfg Config, logger zerolog.Logger) *Classifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Classifier{oracle: oracle, cfg: cfg, logger: logger}
}

func fallback(reasoning string) Result {
	return Result{Priority: PriorityStandard, Confidence: 0.0, Reasoning: reasoning}
}

// Classify returns a priority for the given claim features. It never fails
// for business reasons: every oracle outcome, including timeout, transport
// error, and malformed output, collapses to a standard-priority result.
// Invalid input is the sole error path.
func (c *Classifier) Classify(ctx context.Context, req Request) (Result, error) {
	if req.CPTCode == "" {
		return Result{}, fmt.Errorf("%w: cptCode is required", ErrInvalidInput)
	}
	if req.ICD10Code == "" {
		return Result{}, fmt.Errorf("%w: icd10Code is required", ErrInvalidInput)
	}
	if req.BilledAmount <= 0 {
		return Result{}, fmt.Errorf("%w: billedAmount must be positive", ErrInvalidInput)
	}

	if !c.cfg.Enabled {
		metrics.TriageOutcomes.WithLabelValues("disabled").Inc()
		return fallback("priority triage is disabled in configuration"), nil
	}
	if c.oracle == nil {
		metrics.TriageOutcomes.WithLabelValues("unconfigured").Inc()
		return fallback("priority advisory service is not configured"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	type outcome struct {
		res Result
		err error
	}
	// Buffered so a late completion after the deadline neither blocks the
	// goroutine nor is awaited here.
	ch := make(chan outcome, 1)
	start := time.Now()
	go func() {
		res, err := c.oracle.Advise(ctx, req)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		metrics.TriageOutcomes.WithLabelValues("timeout").Inc()
		c.logger.Warn().
			Str("cpt_code", req.CPTCode).
			Dur("timeout", c.cfg.Timeout).
			Msg("priority advisory call timed out")
		return fallback(fmt.Sprintf("advisory call timed out after %dms; defaulting to standard priority",
			c.cfg.Timeout.Milliseconds())), nil
	case out := <-ch:
		metrics.TriageDuration.Observe(time.Since(start).Seconds())
		if out.err != nil {
			if errors.Is(out.err, ErrMalformedAdvice) {
				metrics.TriageOutcomes.WithLabelValues("malformed").Inc()
				c.logger.Warn().Err(out.err).Msg("advisory response parsing failed")
				return fallback("advisory response parsing failed; defaulting to standard priority"), nil
			}
			metrics.TriageOutcomes.WithLabelValues("error").Inc()
			c.logger.Warn().Err(out.err).Msg("priority advisory call failed")
			return fallback(fmt.Sprintf("advisory service error: %v; defaulting to standard priority", out.err)), nil
		}
		if !validPriority(out.res.Priority) || out.res.Confidence < 0 || out.res.Confidence > 1 || out.res.Reasoning == "" {
			metrics.TriageOutcomes.WithLabelValues("malformed").Inc()
			c.logger.Warn().
				Str("priority", out.res.Priority).
				Float64("confidence", out.res.Confidence).
				Msg("advisory result failed validation")
			return fallback("advisory response parsing failed; defaulting to standard priority"), nil
		}
		metrics.TriageOutcomes.WithLabelValues("oracle").Inc()
		return out.res, nil
	}
}

// CostPriority is the deterministic cost-based rule: at or above the urgent
// threshold is URGENT, below the routine threshold is ROUTINE, STANDARD in
// between. It is the reference semantics for callers that need a purely
// deterministic classification without the oracle.
func (c *Classifier) CostPriority(billedAmount float64) string {
	switch {
	case billedAmount >= c.cfg.UrgentThreshold:
		return PriorityUrgent
	case billedAmount < c.cfg.RoutineThreshold:
		return PriorityRoutine
	default:
		return PriorityStandard
	}
}
