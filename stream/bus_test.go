package stream

import (
	"context"
	"testing"
	"time"

	"github.com/photolog-app/photolog/model"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	ctx := context.Background()

	// Go channel receive and send cannot be in the same routine, otherwise it
	// will cause deadlock. Thus we need to asynchronously get back message.
	events, err := bus.Subscribe(ctx, model.TopicPhotos)
	require.NoError(t, err)

	var received *model.Event
	done := make(chan int)
	go func() {
		received = <-events
		done <- 1
	}()

	err = bus.Publish(&model.Event{
		Kind:  model.EventPhotoCreated,
		Topic: model.TopicPhotos,
	})
	require.NoError(t, err)

	<-done
	require.NotNil(t, received)
	require.Equal(t, model.EventPhotoCreated, received.Kind)
	require.Equal(t, model.TopicPhotos, received.Topic)
	require.False(t, received.EmittedAt.IsZero())
}

func TestBusMirrorsToFirehose(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	ctx := context.Background()

	firehose, err := bus.Subscribe(ctx, model.TopicFirehose)
	require.NoError(t, err)

	var received *model.Event
	done := make(chan int)
	go func() {
		received = <-firehose
		done <- 1
	}()

	err = bus.Publish(&model.Event{
		Kind:  model.EventMemberUpdated,
		Topic: model.TopicMembers,
	})
	require.NoError(t, err)

	<-done
	require.Equal(t, model.EventMemberUpdated, received.Kind)
	require.Equal(t, model.TopicMembers, received.Topic)
}

func TestBusSubscriberClosedOnCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := bus.Subscribe(ctx, model.PhotoTopic("p1"))
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel was not closed after cancel")
	}
}
