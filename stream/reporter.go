package stream

import (
	"context"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/photolog-app/photolog/model"
	Logger "github.com/photolog-app/photolog/utils/log"
)

const (
	ddogEventCounter = "photolog.event"
)

// Reporter's job is to listen to the firehose and aggregate results, sending
// to Datadog (Or other service if there's any) for monitoring purpose.
type Reporter struct {
	Statsd *statsd.Client

	Bus *Bus
}

func NewReporter(statsd *statsd.Client, bus *Bus) *Reporter {
	return &Reporter{
		Statsd: statsd,
		Bus:    bus,
	}
}

func NewDogStatsdClient() *statsd.Client {
	statsd, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		panic(err)
	}
	return statsd
}

// Run consumes the firehose until ctx is cancelled. Safe to run in its own
// goroutine from main.
func (r *Reporter) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := r.Bus.Subscribe(ctx, model.TopicFirehose)
	if err != nil {
		return err
	}

	for e := range events {
		err := r.Statsd.Incr(ddogEventCounter,
			[]string{
				"kind:" + e.Kind,
				"topic:" + e.Topic,
			}, 1)
		if err != nil {
			Logger.Log.Infoln("cannot report event counter")
		}
	}

	return nil
}
