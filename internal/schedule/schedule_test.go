package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSlot_OnlyLatestTaskRuns(t *testing.T) {
	clock := NewFake(epoch)
	slot := NewSlot(clock, 500*time.Millisecond)

	var ran []string
	for _, q := range []string{"pro", "proj", "proje"} {
		q := q
		slot.Schedule(func() { ran = append(ran, q) })
		clock.Advance(200 * time.Millisecond)
	}
	assert.Empty(t, ran, "nothing should fire while input keeps arriving")

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, []string{"proje"}, ran)
	assert.False(t, slot.Pending())
	assert.Equal(t, 0, clock.Pending())
}

func TestSlot_CancelDropsPendingTask(t *testing.T) {
	clock := NewFake(epoch)
	slot := NewSlot(clock, time.Second)

	fired := false
	slot.Schedule(func() { fired = true })
	assert.True(t, slot.Pending())

	assert.True(t, slot.Cancel())
	assert.False(t, slot.Cancel(), "second cancel has nothing to drop")

	clock.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestRecurring_FiresEveryIntervalUntilStopped(t *testing.T) {
	clock := NewFake(epoch)

	ticks := 0
	r := Every(clock, 30*time.Minute, func() { ticks++ })

	clock.Advance(29 * time.Minute)
	assert.Equal(t, 0, ticks)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, ticks)

	clock.Advance(time.Hour)
	assert.Equal(t, 3, ticks)

	r.Stop()
	r.Stop()
	assert.True(t, r.Stopped())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 0, clock.Pending())
}

func TestRecurring_StopOnNilIsSafe(t *testing.T) {
	var r *Recurring
	assert.NotPanics(t, r.Stop)
}

func TestFake_FiresInDueOrder(t *testing.T) {
	clock := NewFake(epoch)

	var order []int
	clock.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	clock.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	clock.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	clock.Advance(5 * time.Second)
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, epoch.Add(5*time.Second), clock.Now())
}
