package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("WIB", 7*3600))
	c := NewFakeClock(start)

	assert.Equal(t, time.UTC, c.Now().Location())
	c.Advance(time.Minute)
	assert.True(t, c.Now().Equal(start.Add(time.Minute)))
}

func TestSystemIsUTC(t *testing.T) {
	var c Clock = System{}
	assert.Equal(t, time.UTC, c.Now().Location())
}
