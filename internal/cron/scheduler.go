package cron

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aulas/aulas-bff/internal/logger"
)

// Pinger is anything that can tell whether the Backend Service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor holds the result of the last backend probe.
type Monitor struct {
	mu        sync.RWMutex
	lastErr   error
	checkedAt time.Time
	pinger    Pinger
	timeout   time.Duration
	log       zerolog.Logger
}

func NewMonitor(p Pinger) *Monitor {
	return &Monitor{pinger: p, timeout: 10 * time.Second, log: logger.Get()}
}

// Check probes once and records the outcome.
func (m *Monitor) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	err := m.pinger.Ping(ctx)

	m.mu.Lock()
	wasDown := m.lastErr != nil
	m.lastErr = err
	m.checkedAt = time.Now()
	m.mu.Unlock()

	switch {
	case err != nil:
		m.log.Warn().Err(err).Msg("❌ backend health probe failed")
	case wasDown:
		m.log.Info().Msg("✅ backend reachable again")
	}
}

// Healthy reports the last probe result. Before the first probe it is true.
func (m *Monitor) Healthy() (bool, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr == nil, m.checkedAt
}

// StartJobs schedules the probe. An empty schedule disables it and returns nil.
func StartJobs(schedule string, m *Monitor) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, m.Check); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
