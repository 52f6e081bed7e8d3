package clocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Mock(t *testing.T) {
	clock := NewMock()
	start := clock.Now()
	clock.Advance(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), clock.Now())
}

func Test_ScopedTimer(t *testing.T) {
	clock := NewMock()
	var elapsedUs int64
	func() {
		timer := NewScopedTimer(clock, &elapsedUs)
		defer timer.Stop()
		clock.Advance(1500 * time.Microsecond)
	}()
	assert.Equal(t, int64(1500), elapsedUs)
}

func Test_ScopedTimer_StopOnlyRecordsOnce(t *testing.T) {
	clock := NewMock()
	var elapsedUs int64
	timer := NewScopedTimer(clock, &elapsedUs)
	clock.Advance(time.Millisecond)
	timer.Stop()
	clock.Advance(time.Hour)
	timer.Stop()
	assert.Equal(t, int64(1000), elapsedUs)
}
