package health

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("db", func(ctx context.Context) Status { return StatusOK })
	c.Register("editor", func(ctx context.Context) Status { return StatusOK })

	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_OneDown(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("db", func(ctx context.Context) Status { return StatusOK })
	c.Register("scraper", func(ctx context.Context) Status { return StatusDown })

	assert.False(t, c.IsReady(context.Background()))
}

func TestChecker_Degraded_StillReady(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("db", func(ctx context.Context) Status { return StatusDegraded })

	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_NoChecks(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	assert.True(t, c.IsReady(context.Background()))
}

func TestChecker_Cached(t *testing.T) {
	c := NewChecker(zerolog.Nop())
	c.Register("db", func(ctx context.Context) Status { return StatusOK })

	assert.Empty(t, c.Cached())
	c.RunAll(context.Background())
	assert.Equal(t, StatusOK, c.Cached()["db"])
}
