package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/photolog-app/photolog/model"
	Logger "github.com/photolog-app/photolog/utils/log"
)

// Bus is the in-process event bus behind the realtime endpoint. For now we use
// a golang channel implementation for the event bus, but later when needed we
// could substitute it with a Kafka-based one.
//
// Every event is published to its own topic and mirrored onto the firehose
// topic, which the stats reporter listens on. gochannel has no wildcard
// subscription, the firehose mirror is how a single consumer sees everything.
type Bus struct {
	channel *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		channel: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            16,
				BlockPublishUntilSubscriberAck: false,
			},
			watermill.NewStdLogger(false, false),
		),
	}
}

// Publish emits the event on its topic and on the firehose. Watermill
// messages are single use, each topic gets its own copy.
func (b *Bus) Publish(e *model.Event) error {
	if e.EmittedAt.IsZero() {
		e.EmittedAt = time.Now()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if err := b.channel.Publish(e.Topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		return err
	}
	return b.channel.Publish(model.TopicFirehose, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe returns a channel of decoded events on the given topic. The
// channel is closed when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *model.Event, error) {
	messages, err := b.channel.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	out := make(chan *model.Event, 16)
	go func() {
		defer close(out)
		for msg := range messages {
			msg.Ack()

			var e model.Event
			if err := json.Unmarshal(msg.Payload, &e); err != nil {
				Logger.Log.Error("drop undecodable event on topic ", topic, ": ", err)
				continue
			}

			select {
			case out <- &e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.channel.Close()
}
