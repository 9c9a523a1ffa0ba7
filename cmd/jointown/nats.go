package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/jointown"
	"github.com/arloliu/jointown/internal/publish"
	"github.com/arloliu/jointown/types"
)

// snapshotPublisher mirrors a World into a KV bucket for the whole run.
type snapshotPublisher struct {
	world       *jointown.World
	publisher   *publish.Publisher
	unsubscribe func()
	done        chan error
	logger      types.Logger
	cleanup     []func()
}

func startPublisher(ctx context.Context, cfg natsConfig, w *jointown.World, logger types.Logger) (*snapshotPublisher, error) {
	p := &snapshotPublisher{world: w, logger: logger, done: make(chan error, 1)}

	nc, err := p.connect(cfg)
	if err != nil {
		p.close()
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		p.close()
		return nil, fmt.Errorf("failed to get JetStream: %w", err)
	}
	kv, err := publish.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "jointown ownership snapshots",
		History:     8,
	}, 3)
	if err != nil {
		p.close()
		return nil, err
	}

	p.publisher = publish.New(kv, publish.WithPrefix(cfg.Prefix), publish.WithLogger(logger))
	ch, unsubscribe := w.Subscribe()
	p.unsubscribe = unsubscribe
	go func() {
		p.done <- p.publisher.Run(ctx, ch)
	}()

	logger.Info("publishing snapshots", "bucket", cfg.Bucket, "key", p.publisher.WorldKey())

	return p, nil
}

func (p *snapshotPublisher) connect(cfg natsConfig) (*nats.Conn, error) {
	url := cfg.URL
	if cfg.Mode == natsEmbedded {
		dir, err := os.MkdirTemp("", "jointown-nats-")
		if err != nil {
			return nil, fmt.Errorf("create JetStream store: %w", err)
		}
		p.cleanup = append(p.cleanup, func() { _ = os.RemoveAll(dir) })

		ns, err := server.NewServer(&server.Options{
			Host:      "127.0.0.1",
			Port:      -1,
			JetStream: true,
			StoreDir:  dir,
			NoLog:     true,
			NoSigs:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS server: %w", err)
		}
		go ns.Start()
		p.cleanup = append(p.cleanup, func() {
			ns.Shutdown()
			ns.WaitForShutdown()
		})
		if !ns.ReadyForConnections(10 * time.Second) {
			return nil, errors.New("NATS server not ready")
		}
		url = ns.ClientURL()
		p.logger.Debug("embedded NATS server started", "url", url)
	}

	nc, err := nats.Connect(url, nats.Timeout(2*time.Second), nats.Name("jointown"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p.cleanup = append(p.cleanup, nc.Close)

	return nc, nil
}

// finish stops the subscription, waits for pending snapshots and publishes
// the final state, which a full subscriber buffer may have dropped.
func (p *snapshotPublisher) finish(ctx context.Context) error {
	p.unsubscribe()
	if err := <-p.done; err != nil {
		return fmt.Errorf("publish snapshots: %w", err)
	}
	if _, err := p.publisher.Publish(ctx, p.world.Snapshot()); err != nil {
		return err
	}

	step, _ := p.publisher.LastStep()
	p.logger.Info("snapshots published", "published_step", step)

	return nil
}

// close releases the connection and the embedded server in reverse order.
func (p *snapshotPublisher) close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	for i := len(p.cleanup) - 1; i >= 0; i-- {
		p.cleanup[i]()
	}
	p.cleanup = nil
}
