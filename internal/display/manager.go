// Package display queries and mutates the OS display configuration: topology
// paths and modes, per-source DPI scaling, legacy per-device resolution and
// display enable state. All OS access goes through a Gateway.
package display

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultQueryAttempts = 3
	defaultRetryDelay    = 100 * time.Millisecond
)

// Manager is the display configuration engine. It holds no display state of
// its own; every operation starts from a fresh query.
type Manager struct {
	gw            Gateway
	log           logrus.FieldLogger
	queryAttempts int
	retryDelay    time.Duration
	sleep         func(time.Duration)
}

type Option func(*Manager)

func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithQueryRetry sets how many times the two-phase topology query is attempted
// and how long to wait between attempts.
func WithQueryRetry(attempts int, delay time.Duration) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.queryAttempts = attempts
		}
		if delay >= 0 {
			m.retryDelay = delay
		}
	}
}

func NewManager(gw Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:            gw,
		log:           discardLogger(),
		queryAttempts: defaultQueryAttempts,
		retryDelay:    defaultRetryDelay,
		sleep:         time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// QueryTopology returns the path and mode arrays for scope. The buffer sizes
// can change between the size query and the fill query when a monitor is
// plugged in, so a failed query is retried as a whole.
func (m *Manager) QueryTopology(scope QueryScope) ([]Path, []Mode, error) {
	var lastErr error
	for attempt := 1; attempt <= m.queryAttempts; attempt++ {
		paths, modes, err := m.gw.QueryConfig(scope)
		if err == nil {
			return paths, modes, nil
		}
		lastErr = err
		m.log.WithFields(logrus.Fields{
			"scope":   scope.String(),
			"attempt": attempt,
		}).WithError(err).Debug("topology query failed")
		if attempt < m.queryAttempts && m.retryDelay > 0 {
			m.sleep(m.retryDelay)
		}
	}
	if !errors.Is(lastErr, ErrQuery) {
		lastErr = fmt.Errorf("%w: %w", ErrQuery, lastErr)
	}
	return nil, nil, lastErr
}
