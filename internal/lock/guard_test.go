package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardSingleFlight(t *testing.T) {
	g := NewGuard()

	release, ok := g.Acquire(KindAnnotate)
	require.True(t, ok)
	assert.True(t, g.Held(KindAnnotate))

	_, ok = g.Acquire(KindAnnotate)
	assert.False(t, ok)

	// another kind has its own slot
	releaseVec, ok := g.Acquire(KindVectorize)
	require.True(t, ok)
	releaseVec()

	release()
	assert.False(t, g.Held(KindAnnotate))

	// release is idempotent
	release()

	_, ok = g.Acquire(KindAnnotate)
	assert.True(t, ok)
}
