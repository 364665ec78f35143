package metrics

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/infigaming-com/go-stomp/stomp"
)

var _ stomp.MetricsHook = (*Hook)(nil)

// Hook records stomp.Client activity as OpenTelemetry instruments.
type Hook struct {
	framesSent     metric.Int64Counter
	framesReceived metric.Int64Counter
	framesRejected metric.Int64Counter
	decodeErrors   metric.Int64Counter
	reconnects     metric.Int64Counter
	pings          metric.Int64Counter
	status         atomic.Int64
}

func NewHook(meter metric.Meter) (*Hook, error) {
	h := &Hook{}
	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
	}{
		{&h.framesSent, "stomp.frames.sent", "Frames written to the transport"},
		{&h.framesReceived, "stomp.frames.received", "Frames decoded from the transport"},
		{&h.framesRejected, "stomp.frames.rejected", "Frames refused because of the connection status"},
		{&h.decodeErrors, "stomp.decode.errors", "Inbound messages that were not valid frames"},
		{&h.reconnects, "stomp.reconnect.attempts", "Automatic reconnection attempts"},
		{&h.pings, "stomp.pings", "Transport pings sent"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	gauge, err := meter.Int64ObservableGauge("stomp.status",
		metric.WithDescription("Connection status: 0 disconnected, 1 connecting, 2 transport connected, 3 protocol connected"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge: %w", err)
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, h.status.Load())
		return nil
	}, gauge)
	if err != nil {
		return nil, fmt.Errorf("failed to register gauge callback: %w", err)
	}
	return h, nil
}

func commandAttr(command string) metric.AddOption {
	return metric.WithAttributes(attribute.String("command", command))
}

func (h *Hook) OnFrameSent(command string) {
	h.framesSent.Add(context.Background(), 1, commandAttr(command))
}

func (h *Hook) OnFrameReceived(command string) {
	h.framesReceived.Add(context.Background(), 1, commandAttr(command))
}

func (h *Hook) OnFrameRejected(command string, status stomp.Status) {
	h.framesRejected.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status.String()),
	))
}

func (h *Hook) OnDecodeError() {
	h.decodeErrors.Add(context.Background(), 1)
}

func (h *Hook) OnStatusChange(status stomp.Status) {
	h.status.Store(int64(status))
}

func (h *Hook) OnReconnectAttempt(int) {
	h.reconnects.Add(context.Background(), 1)
}

func (h *Hook) OnPing() {
	h.pings.Add(context.Background(), 1)
}
