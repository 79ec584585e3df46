package resilience

import "time"

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig is tuned for serialization failures and deadlocks on
// best-record transactions: a handful of quick attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   20 * time.Millisecond,
		MaxDelay:    time.Second,
	}
}

// RemoteCallRetryConfig allows retries extra attempts with slower backoff,
// for calls to out-of-process services.
func RemoteCallRetryConfig(retries int) RetryConfig {
	if retries < 0 {
		retries = 0
	}
	return RetryConfig{
		MaxAttempts: retries + 1,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Normalize fills unset fields from DefaultRetryConfig.
func (c RetryConfig) Normalize() RetryConfig {
	defaults := DefaultRetryConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaults.BaseDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = max(defaults.MaxDelay, c.BaseDelay)
	}
	return c
}

func (c RetryConfig) LogFields() []any {
	return []any{"retry_attempts", c.MaxAttempts, "retry_base_delay", c.BaseDelay, "retry_max_delay", c.MaxDelay}
}

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Normalize fills unset thresholds from DefaultCircuitBreakerConfig. Enabled is kept as given.
func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if c.FailureThreshold < 1 {
		c.FailureThreshold = defaults.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaults.OpenTimeout
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return c
}

func (c CircuitBreakerConfig) LogFields() []any {
	if !c.Enabled {
		return []any{"breaker_enabled", false}
	}
	return []any{
		"breaker_enabled", true,
		"breaker_failure_threshold", c.FailureThreshold,
		"breaker_open_timeout", c.OpenTimeout,
		"breaker_half_open_max", c.HalfOpenMaxReq,
	}
}
