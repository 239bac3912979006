package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"motiv8/pkg/logger"
)

func TestEveryRunsTaskUntilShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := New(logger.Nop())
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Every("count", 10*time.Millisecond, func() { runs.Add(1) }))
	s.Start()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Shutdown())
}
