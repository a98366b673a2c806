package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/frdg/internal/config"
	"github.com/mamadbah2/frdg/internal/domain/models"
)

type countingSweeper struct {
	runs atomic.Int32
	err  error
}

func (c *countingSweeper) Sweep(context.Context) (models.ExpiryReport, error) {
	c.runs.Add(1)
	return models.ExpiryReport{}, c.err
}

func TestNewScheduler_RejectsBadSchedule(t *testing.T) {
	_, err := NewScheduler(config.ExpiryConfig{CronSchedule: "every morning", Timezone: "UTC"}, &countingSweeper{}, nil)
	assert.ErrorContains(t, err, "schedule expiry sweep")
}

func TestScheduler_NextUsesTimezone(t *testing.T) {
	s, err := NewScheduler(config.ExpiryConfig{CronSchedule: "0 8 * * *", Timezone: "Asia/Tokyo"}, &countingSweeper{}, nil)
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	next := s.Next()
	require.False(t, next.IsZero())
	inTokyo := next.In(config.Location("Asia/Tokyo"))
	assert.Equal(t, 8, inTokyo.Hour())
	assert.Equal(t, 0, inTokyo.Minute())
}

func TestScheduler_RunsSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	s, err := NewScheduler(config.ExpiryConfig{CronSchedule: "@every 1s", Timezone: "UTC"}, sweeper, nil)
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return sweeper.runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestScheduler_LogsSweepFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s, err := NewScheduler(config.ExpiryConfig{CronSchedule: "0 8 * * *", Timezone: "UTC"}, &countingSweeper{err: assert.AnError}, zap.New(core))
	require.NoError(t, err)

	s.runSweep()
	assert.Equal(t, 1, logs.FilterMessage("expiry sweep failed").Len())
}
