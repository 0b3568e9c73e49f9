package simulator

import (
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/utils"
)

// RetryPolicy bounds the transient-failure loop of the invoker.
type RetryPolicy struct {
	maxAttempts int
	backoff     utils.BackoffStrategy
}

// NewRetryPolicyFromConfig creates a retry policy from config
func NewRetryPolicyFromConfig(cfg *config.Retries) *RetryPolicy {
	return NewRetryPolicy(cfg.MaxAttempts,
		utils.BackoffFromConfig(cfg.Backoff, cfg.GetBaseDelay(), cfg.GetMaxDelay()))
}

// NewRetryPolicy creates a retry policy allowing maxAttempts attempts in total.
// A nil backoff retries immediately.
func NewRetryPolicy(maxAttempts int, backoff utils.BackoffStrategy) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoff == nil {
		backoff = utils.NewConstantBackoff(0)
	}
	return &RetryPolicy{
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

func (p *RetryPolicy) Name() string {
	return "retry"
}

// ShouldRetry reports whether another attempt is allowed after attempt
// (1-based) failed with err. Only transient failures are retried.
func (p *RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if attempt >= p.maxAttempts {
		return false
	}
	return Classify(err).Transient()
}

// GetBackoffDuration returns the wait before the retry that follows attempt.
func (p *RetryPolicy) GetBackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return p.backoff.NextDelay(attempt - 1)
}

// GetMaxAttempts returns the attempt cap, first attempt included.
func (p *RetryPolicy) GetMaxAttempts() int {
	return p.maxAttempts
}
