// Package tlmt sends anonymous usage events. Nothing is sent unless an API
// key is configured.
package tlmt

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

const defaultEndpoint = "https://eu.i.posthog.com"

type Event struct {
	Name       string
	Properties map[string]any
}

type Telemetry interface {
	Send(ctx context.Context, event Event) error
	Close() error
}

// New returns a posthog-backed Telemetry, or a no-op one when apiKey is empty.
func New(apiKey string) (Telemetry, error) {
	if apiKey == "" {
		return Noop{}, nil
	}

	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: defaultEndpoint})
	if err != nil {
		return nil, err
	}

	return &posthogTelemetry{
		client:     client,
		distinctID: machineID(),
	}, nil
}

type posthogTelemetry struct {
	client     posthog.Client
	distinctID string
}

func (t *posthogTelemetry) Send(_ context.Context, event Event) error {
	props := posthog.NewProperties()
	for k, v := range event.Properties {
		props.Set(k, v)
	}

	return t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event.Name,
		Properties: props,
	})
}

func (t *posthogTelemetry) Close() error {
	return t.client.Close()
}

// machineID is stable per host and does not reveal the host name.
func machineID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(host)).String()
}

type Noop struct{}

func (Noop) Send(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
