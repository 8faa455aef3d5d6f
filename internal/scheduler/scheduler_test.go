package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-viewer/internal/logger"
	"github.com/i474232898/weather-viewer/internal/weather"
)

type fakeProber struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProber) Probe(ctx context.Context, loc weather.Location) error {
	f.calls.Add(1)
	return f.err
}

func TestRunProbeRecordsStatus(t *testing.T) {
	p := &fakeProber{}
	s := New(weather.NamedLocation("Ankara"), time.Minute, p, logger.Discard())

	assert.Nil(t, s.Status())

	s.RunProbe()
	st := s.Status()
	require.NotNil(t, st)
	assert.True(t, st.Healthy)
	assert.Empty(t, st.Error)
	assert.False(t, st.CheckedAt.IsZero())

	p.err = errors.New("boom")
	s.RunProbe()
	st = s.Status()
	require.NotNil(t, st)
	assert.False(t, st.Healthy)
	assert.Equal(t, "boom", st.Error)
}

func TestStartWithoutLocationSchedulesNothing(t *testing.T) {
	p := &fakeProber{}
	s := New(weather.Location{}, time.Minute, p, logger.Discard())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, int32(0), p.calls.Load())
	assert.Nil(t, s.Status())
}

func TestStartRunsFirstProbeImmediately(t *testing.T) {
	p := &fakeProber{}
	s := New(weather.NamedLocation("Ankara"), time.Hour, p, logger.Discard())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return s.Status() != nil }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), p.calls.Load())
}
