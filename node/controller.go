// Package node drives the lifecycle of the Lightning node: start it, wait
// until it answers, and record its identity in the store.
package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/40acres/ettawallet/channels"
	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/store"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxRetries    = 10
	DefaultRetryInterval = time.Second
)

var (
	ErrNodeStart    = errors.New("could not start node")
	ErrNodeNotReady = errors.New("node not ready")
)

type Controller struct {
	node  lightning.Node
	store *store.Store
	clock clock.Clock

	calls singleflight.Group
	wg    sync.WaitGroup
}

type Option func(*Controller)

func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

func NewController(node lightning.Node, s *store.Store, opts ...Option) *Controller {
	c := &Controller{
		node:  node,
		store: s,
		clock: clock.NewDefaultClock(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// EnsureStarted asks the node to start unless the session is already
// running. Concurrent callers share the same start sequence, which keeps
// going when a caller leaves through its context.
func (c *Controller) EnsureStarted(ctx context.Context, cfg lightning.NodeConfig) error {
	if c.store.Status().AtLeastRunning() {
		return nil
	}

	startCtx := context.WithoutCancel(ctx)
	result := c.calls.DoChan("start", func() (any, error) {
		return nil, c.start(startCtx, cfg)
	})

	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) start(ctx context.Context, cfg lightning.NodeConfig) error {
	if c.store.Status().AtLeastRunning() {
		return nil
	}

	if err := c.store.SetNodeStatus(store.Initializing); err != nil {
		return fmt.Errorf("%w: %w", ErrNodeStart, err)
	}
	for _, peer := range cfg.Peers {
		c.store.AddPeer(peer)
	}

	log.WithField("network", cfg.Network).Info("starting node")
	if err := c.node.StartNode(ctx, cfg); err != nil {
		c.fail()

		return fmt.Errorf("%w: %w", ErrNodeStart, err)
	}

	return nil
}

// AwaitReady polls the node up to maxRetries times, interval apart. All
// callers waiting at the same time share one polling loop; a caller leaving
// through its context does not stop it.
func (c *Controller) AwaitReady(ctx context.Context, maxRetries int, interval time.Duration) error {
	if c.store.Status() == store.Complete {
		return nil
	}
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}

	loopCtx := context.WithoutCancel(ctx)
	result := c.calls.DoChan("ready", func() (any, error) {
		return nil, c.awaitReady(loopCtx, maxRetries, interval)
	})

	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) awaitReady(ctx context.Context, maxRetries int, interval time.Duration) error {
	switch c.store.Status() {
	case store.Complete:
		return nil
	case store.Error:
		// A new wait is a retry of the failed session.
		if err := c.store.SetNodeStatus(store.Initializing); err != nil {
			return fmt.Errorf("%w: %w", ErrNodeNotReady, err)
		}
	}

	logger := log.WithField("max_retries", maxRetries)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if c.node.IsNodeRunning(ctx) {
			logger.WithField("attempt", attempt).Info("node is running")

			return c.complete(ctx)
		}
		logger.WithField("attempt", attempt).Debug("node not running yet")

		if attempt < maxRetries {
			<-c.clock.TickAfter(interval)
		}
	}

	c.fail()

	return fmt.Errorf("%w after %d attempts", ErrNodeNotReady, maxRetries)
}

func (c *Controller) complete(ctx context.Context) error {
	identity, err := c.node.GetNodeIdentity(ctx)
	if err != nil {
		c.fail()

		return fmt.Errorf("%w: could not get node identity: %w", ErrNodeNotReady, err)
	}
	if identity == nil || identity.NodeID == "" {
		c.fail()

		return fmt.Errorf("%w: %w", ErrNodeNotReady, store.ErrMissingIdentity)
	}

	if err := c.store.MarkRunning(*identity); err != nil {
		return fmt.Errorf("%w: %w", ErrNodeNotReady, err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.node.ConnectPeers(ctx); err != nil {
			log.WithError(err).Warn("could not connect to peers")
		}
	}()

	if err := c.store.SetNodeStatus(store.Complete); err != nil {
		return fmt.Errorf("%w: %w", ErrNodeNotReady, err)
	}
	log.WithFields(log.Fields{
		"node_id": identity.NodeID,
		"version": identity.Version.Version,
	}).Info("node ready")

	return nil
}

func (c *Controller) fail() {
	if err := c.store.SetNodeStatus(store.Error); err != nil {
		log.WithError(err).Error("could not record node error")
	}
}

// SyncChannels fetches channels and the claimable balance and hands both to
// the tracker. Nothing is merged unless both fetches succeed.
func (c *Controller) SyncChannels(ctx context.Context, tracker *channels.Tracker) error {
	fetched, err := c.node.GetChannels(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch channels: %w", err)
	}

	balance, err := c.node.GetClaimableBalance(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch claimable balance: %w", err)
	}

	tracker.MergeChannelUpdate(fetched, channels.OpenChannelIDs(fetched))
	tracker.SetClaimableBalance(balance)

	return nil
}

// Wait blocks until background peer connections have returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}
