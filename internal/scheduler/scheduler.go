package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-viewer/internal/logger"
	"github.com/i474232898/weather-viewer/internal/weather"
)

const probeTimeout = 30 * time.Second

// Prober checks that the weather provider answers for a location.
type Prober interface {
	Probe(ctx context.Context, loc weather.Location) error
}

// ProbeStatus is the outcome of the latest provider probe.
type ProbeStatus struct {
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}

// Scheduler periodically probes the weather provider. It keeps only the last
// probe outcome, never weather data.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	location  weather.Location
	interval  time.Duration
	log       logger.Logger

	mu     sync.RWMutex
	status *ProbeStatus
}

// New creates a new Scheduler.
func New(location weather.Location, interval time.Duration, prober Prober, log logger.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		location:  location,
		interval:  interval,
		log:       log.WithField("component", "scheduler"),
	}
}

// Start schedules the probe job and starts the underlying scheduler. The first
// probe runs immediately.
func (s *Scheduler) Start() error {
	if s.location.Validate() != nil || s.interval <= 0 {
		s.log.Info("no probe location or interval configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.RunProbe)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Infof("probing provider for %s every %s", s.location.Key(), s.interval)
	return nil
}

// RunProbe executes one probe and records its outcome.
func (s *Scheduler) RunProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := s.prober.Probe(ctx, s.location)

	status := &ProbeStatus{Healthy: err == nil, CheckedAt: time.Now().UTC()}
	if err != nil {
		status.Error = err.Error()
		s.log.Warnf("provider probe failed for %s: %v", s.location.Key(), err)
	} else {
		s.log.Debugf("provider probe ok for %s", s.location.Key())
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Status returns the latest probe outcome, or nil before the first probe.
func (s *Scheduler) Status() *ProbeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status == nil {
		return nil
	}
	st := *s.status
	return &st
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
