package cooldown

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newLimiter(interval time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := New(interval)
	l.now = clock.now
	return l, clock
}

func TestAllow_OnePerInterval(t *testing.T) {
	l, clock := newLimiter(2 * time.Second)

	ok, _ := l.Allow("alice")
	assert.True(t, ok)

	clock.advance(500 * time.Millisecond)
	ok, wait := l.Allow("alice")
	assert.False(t, ok)
	assert.Equal(t, 1500*time.Millisecond, wait)

	clock.advance(1500 * time.Millisecond)
	ok, _ = l.Allow("alice")
	assert.True(t, ok)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newLimiter(2 * time.Second)

	ok, _ := l.Allow("alice")
	assert.True(t, ok)
	ok, _ = l.Allow("bob")
	assert.True(t, ok)
}

func TestAllow_RejectedCallDoesNotExtendCooldown(t *testing.T) {
	l, clock := newLimiter(2 * time.Second)

	l.Allow("alice")
	clock.advance(time.Second)
	l.Allow("alice")
	clock.advance(time.Second)
	ok, _ := l.Allow("alice")
	assert.True(t, ok)
}

func TestAllow_Disabled(t *testing.T) {
	l, _ := newLimiter(0)
	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("alice")
		assert.True(t, ok)
	}
}

func TestSweep(t *testing.T) {
	l, clock := newLimiter(time.Second)
	for i := 0; i < 1100; i++ {
		l.Allow(fmt.Sprintf("user%d", i))
	}
	clock.advance(2 * time.Second)
	l.Allow("late")
	assert.Len(t, l.last, 1)
}

func TestSweep_AtMostOncePerInterval(t *testing.T) {
	l, clock := newLimiter(time.Second)
	for i := 0; i < sweepThreshold; i++ {
		l.Allow(fmt.Sprintf("user%d", i))
	}
	swept := l.lastSweep

	clock.advance(500 * time.Millisecond)
	l.Allow("early")
	assert.Equal(t, swept, l.lastSweep)
	assert.Len(t, l.last, sweepThreshold+1)

	clock.advance(600 * time.Millisecond)
	l.Allow("late")
	assert.Equal(t, clock.t, l.lastSweep)
	assert.Len(t, l.last, 2)
	assert.Contains(t, l.last, "early")
}
