package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boothnow-backend/internal/model"
)

func TestFeed_FanOut(t *testing.T) {
	feed := NewFeed()
	a, cancelA := feed.Subscribe(4)
	defer cancelA()
	b, cancelB := feed.Subscribe(4)
	defer cancelB()

	ev := Event{Kind: EventSessionStarted, BoothID: "b1", Status: model.OccupancyBusy, At: time.Now()}
	feed.Publish(ev)

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)
}

func TestFeed_DropsWhenSubscriberIsFull(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe(1)
	defer cancel()

	feed.Publish(Event{BoothID: "first"})
	feed.Publish(Event{BoothID: "second"})

	got := <-ch
	assert.Equal(t, "first", got.BoothID)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestFeed_CancelClosesChannel(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	// Publishing after cancel must not panic.
	feed.Publish(Event{BoothID: "b1"})
}
