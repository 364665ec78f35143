// Command stomp-tail connects to a STOMP broker over WebSocket and logs every
// message delivered to the configured destinations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/infigaming-com/go-stomp/auth"
	"github.com/infigaming-com/go-stomp/config"
	"github.com/infigaming-com/go-stomp/observability/metrics"
	"github.com/infigaming-com/go-stomp/reachability"
	"github.com/infigaming-com/go-stomp/stomp"
	"github.com/infigaming-com/go-stomp/transport/websocket"
)

func main() {
	envFile := flag.String("env", ".env", "path to an env file")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "stomp-tail: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	lg, sync, err := config.NewLogger()
	if err != nil {
		return err
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []stomp.Option{
		stomp.WithLogger(lg),
		stomp.WithConnectHeaders(cfg.ConnectHeaders()),
		stomp.WithReconnectPolicy(stomp.ReconnectPolicy{
			Interval:    stomp.DefaultReconnectDelay,
			MaxInterval: time.Minute,
			Multiplier:  2,
			Jitter:      0.2,
		}),
		stomp.WithDeduplication(stomp.DeduplicationConfig{TTL: 5 * time.Minute}),
	}

	if cfg.JWTSecret != "" {
		tokens, err := auth.NewTokenSource([]byte(cfg.JWTSecret), auth.WithSubject(cfg.JWTSubject))
		if err != nil {
			return err
		}
		opts = append(opts, stomp.WithHandshakeHeaderFunc(tokens.HandshakeHeaders))
	}

	addr := cfg.ReachabilityAddr
	if addr == "" {
		if addr, err = reachability.AddrFromURL(cfg.URL); err != nil {
			return err
		}
	}
	opts = append(opts, stomp.WithReachability(reachability.New(addr, reachability.WithLogger(lg))))

	if cfg.OTLPEndpoint != "" {
		exporter, err := metrics.NewExporter(ctx,
			metrics.WithServiceName("stomp-tail"),
			metrics.WithOTLPEndpoint(cfg.OTLPEndpoint),
			metrics.WithGlobal(),
		)
		if err != nil {
			return err
		}
		defer func() { _ = exporter.Shutdown(context.Background()) }()

		hook, err := metrics.NewHook(exporter.Meter())
		if err != nil {
			return err
		}
		opts = append(opts, stomp.WithMetrics(hook))
	}

	client, err := stomp.New(cfg.URL, websocket.New(websocket.WithLogger(lg)), opts...)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Shutdown(shutdownCtx)
	}()

	// Subscriptions die with the session, so subscribe again on every connect.
	client.OnEvent(func(ev stomp.ConnectionEvent) {
		switch ev.Kind {
		case stomp.EventConnectedToProtocol:
			for _, dest := range cfg.Destinations {
				if _, err := client.Subscribe(ctx, dest, stomp.AckAuto, nil); err != nil {
					lg.Error("failed to subscribe", zap.String("destination", dest), zap.Error(err))
				}
			}
		case stomp.EventErrorFromProtocol, stomp.EventErrorFromTransport:
			lg.Warn("connection error", zap.Stringer("kind", ev.Kind), zap.String("description", ev.Error.BriefDescription))
		}
	})
	client.OnMessage(func(m stomp.Message) {
		lg.Info("message",
			zap.String("destination", m.Destination),
			zap.String("message_id", m.MessageID),
			zap.Stringer("kind", m.Kind),
			zap.ByteString("body", m.Body()),
		)
	})

	if err := client.Connect(ctx, cfg.ConnectOptions()); err != nil {
		lg.Warn("initial connect failed", zap.Error(err))
	}
	client.EnableAutoPing(cfg.PingInterval)

	<-ctx.Done()
	lg.Info("shutting down")
	disconnectCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !disconnect(disconnectCtx, client) {
		lg.Warn("no disconnect receipt, closing")
	}
	return nil
}

// disconnect asks the broker for a graceful close and waits until the
// transport is down. It reports false when ctx expired first.
func disconnect(ctx context.Context, client *stomp.Client) bool {
	if !client.IsConnected() {
		client.Disconnect(ctx, true)
		return true
	}
	events := client.Events(ctx)
	client.Disconnect(ctx, false)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if ev.Kind == stomp.EventDisconnectedFromTransport {
				return true
			}
		case <-ctx.Done():
			return false
		}
	}
}
