package domain

import "time"

const (
	// DefaultLockKey names the migration lock when none is configured.
	DefaultLockKey = "strata_migration"

	// DefaultLockTimeout bounds how long a run waits for a busy lock.
	DefaultLockTimeout = 5 * time.Second

	// DefaultLockTTL bounds how long a crashed holder keeps an expiring lock.
	DefaultLockTTL = 10 * time.Minute
)

// WaitPolicy decides what a run does when another process holds the migration lock.
// The zero value waits DefaultLockTimeout and then fails with MigrationInProgressError.
type WaitPolicy struct {
	// Block waits until the lock is free or the caller's context ends.
	Block bool `json:"block" yaml:"block"`

	// Timeout bounds the wait when Block is false. Zero means DefaultLockTimeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Wait returns the effective bound on the wait, or zero when blocking.
func (p WaitPolicy) Wait() time.Duration {
	if p.Block {
		return 0
	}
	if p.Timeout <= 0 {
		return DefaultLockTimeout
	}
	return p.Timeout
}
