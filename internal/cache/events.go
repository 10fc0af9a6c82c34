// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// events.go publishes committed hierarchy changes to Valkey. Consumers that
// keep derived data (search indexes, storefront menus) either subscribe to
// the channel or poll the version counter and rebuild when it moves.
// Nothing here caches paths.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"shopcatalog/internal/hierarchy"
)

const (
	// VersionKey holds a counter bumped once per committed mutation.
	VersionKey = "catalog:hierarchy:version"

	// ChangesChannel receives one JSON-encoded hierarchy.Change per commit.
	ChangesChannel = "catalog:hierarchy"

	publishTimeout = 2 * time.Second
)

// EdgePublisher implements hierarchy.Notifier on top of Valkey.
type EdgePublisher struct {
	client *redis.Client
}

// NewEdgePublisher creates a publisher backed by the given Valkey client.
func NewEdgePublisher(client *redis.Client) *EdgePublisher {
	return &EdgePublisher{client: client}
}

// EdgesChanged bumps the version counter and publishes c. The change is
// already committed, so failures are logged and dropped.
func (p *EdgePublisher) EdgesChanged(ctx context.Context, c hierarchy.Change) {
	payload, err := json.Marshal(c)
	if err != nil {
		slog.Warn("hierarchy change encode error", "op", c.Op, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	pipe := p.client.TxPipeline()
	version := pipe.Incr(ctx, VersionKey)
	pipe.Publish(ctx, ChangesChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("hierarchy change publish error", "op", c.Op, "category", c.Category, "error", err)
		return
	}
	slog.Debug("hierarchy change published", "op", c.Op, "version", version.Val())
}

// Version returns the current hierarchy version. A missing key is version 0.
func (p *EdgePublisher) Version(ctx context.Context) (int64, error) {
	v, err := p.client.Get(ctx, VersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Subscribe delivers published changes to fn until ctx is done.
func (p *EdgePublisher) Subscribe(ctx context.Context, fn func(hierarchy.Change)) error {
	sub := p.client.Subscribe(ctx, ChangesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var c hierarchy.Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				slog.Warn("hierarchy change decode error", "error", err)
				continue
			}
			fn(c)
		}
	}
}
