// Package daemon wires the node lifecycle, the invoice ledger, channel and
// payment tracking to the database and the rpc surface, and keeps them in
// sync with the node.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/40acres/ettawallet/channels"
	"github.com/40acres/ettawallet/database"
	"github.com/40acres/ettawallet/database/models"
	"github.com/40acres/ettawallet/invoices"
	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/node"
	"github.com/40acres/ettawallet/payments"
	"github.com/40acres/ettawallet/rpc"
	"github.com/40acres/ettawallet/store"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
	log "github.com/sirupsen/logrus"
)

type Daemon struct {
	cfg        *Config
	node       lightning.Node
	store      *store.Store
	repository database.Repository

	controller *node.Controller
	ledger     *invoices.Ledger
	tracker    *channels.Tracker
	recorder   *payments.Recorder
	server     *rpc.Server

	ticker ticker.Ticker
	clock  clock.Clock
	serve  bool
}

type Option func(*Daemon)

// WithTicker replaces the sync loop ticker.
func WithTicker(t ticker.Ticker) Option {
	return func(d *Daemon) {
		d.ticker = t
	}
}

func WithClock(c clock.Clock) Option {
	return func(d *Daemon) {
		d.clock = c
	}
}

// WithoutRPC keeps the rpc server from listening.
func WithoutRPC() Option {
	return func(d *Daemon) {
		d.serve = false
	}
}

func New(cfg *Config, n lightning.Node, repository database.Repository, opts ...Option) *Daemon {
	d := &Daemon{
		cfg:        cfg,
		node:       n,
		store:      store.New(),
		repository: repository,
		clock:      clock.NewDefaultClock(),
		serve:      true,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.ticker == nil {
		d.ticker = ticker.New(cfg.GetSyncInterval())
	}

	d.controller = node.NewController(n, d.store, node.WithClock(d.clock))
	d.ledger = invoices.NewLedger(n, d.store, d.controller,
		invoices.WithClock(d.clock),
		invoices.WithNetwork(cfg.Network),
		invoices.WithRetries(cfg.MaxRetries, cfg.GetRetryInterval()),
	)
	d.tracker = channels.NewTracker(d.store)
	d.recorder = payments.NewRecorder(d.store)
	d.server = rpc.NewRPCServer(cfg.GRPCPort, d.store, d.controller, d.ledger, d.recorder, cfg.NodeConfig(),
		rpc.WithRetries(cfg.MaxRetries, cfg.GetRetryInterval()),
	)

	return d
}

func (d *Daemon) Store() *store.Store {
	return d.store
}

// Start runs the daemon until ctx is done. It returns early only when the
// node cannot be started or never becomes ready.
func (d *Daemon) Start(ctx context.Context) error {
	log.WithField("network", d.cfg.Network).Info("Starting ettawalletd")

	if err := d.hydrate(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	defer func() {
		d.ticker.Stop()
		if d.serve {
			d.server.Stop()
		}
		if err := d.store.Stop(); err != nil {
			log.WithError(err).Error("could not stop store")
		}
		d.controller.Wait()
		wg.Wait()
	}()

	updates, err := d.store.Subscribe()
	if err != nil {
		return fmt.Errorf("could not subscribe to store: %w", err)
	}
	persister := NewPersister(d.repository, d.store.Snapshot())
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer updates.Cancel()
		persister.Run(ctx, updates)
	}()

	if d.serve {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.server.ListenAndServe(); err != nil {
				log.WithError(err).Error("rpc server stopped")
			}
		}()
	}

	if err := d.controller.EnsureStarted(ctx, d.cfg.NodeConfig()); err != nil {
		return err
	}
	if err := d.controller.AwaitReady(ctx, d.cfg.MaxRetries, d.cfg.GetRetryInterval()); err != nil {
		return err
	}
	d.checkIdentity(ctx)

	d.ticker.Resume()
	d.sync(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down ettawalletd")

			return nil
		case <-d.ticker.Ticks():
			d.sync(ctx)
		}
	}
}

func (d *Daemon) sync(ctx context.Context) {
	if err := d.SyncOnce(ctx); err != nil {
		log.WithError(err).Warn("sync finished with errors")
	}
}

// SyncOnce refreshes channels and balance, reconciles invoices with the node,
// records settled invoices and outgoing payments, then prunes expired invoices.
// Every step runs even when an earlier one fails.
func (d *Daemon) SyncOnce(ctx context.Context) error {
	var errs []error

	if err := d.controller.SyncChannels(ctx, d.tracker); err != nil {
		errs = append(errs, err)
	}

	records, err := d.node.ListInvoices(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("could not list invoices: %w", err))
	} else {
		settled, err := d.ledger.Reconcile(records)
		if err != nil {
			errs = append(errs, fmt.Errorf("could not reconcile invoices: %w", err))
		}
		for _, invoice := range settled {
			if _, err := d.recorder.RecordSettled(invoice); err != nil {
				errs = append(errs, fmt.Errorf("could not record settled invoice %s: %w", invoice.PaymentHash, err))
			}
		}
	}

	sent, err := d.node.ListPayments(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("could not list payments: %w", err))
	}
	for _, invoice := range sent {
		if _, ok := d.store.Payment(invoice.PaymentHash); ok {
			continue
		}
		if _, err := d.recorder.RecordSettled(invoice); err != nil {
			errs = append(errs, fmt.Errorf("could not record payment %s: %w", invoice.PaymentHash, err))
		}
	}

	d.ledger.PruneExpiredNow()

	return errors.Join(errs...)
}

// hydrate loads what the previous session persisted into the store.
func (d *Daemon) hydrate(ctx context.Context) error {
	saved, err := d.repository.GetInvoices(ctx)
	if err != nil {
		return fmt.Errorf("could not load invoices: %w", err)
	}
	loaded := make([]lightning.Invoice, 0, len(saved))
	for _, invoice := range saved {
		loaded = append(loaded, invoice.ToLightning())
	}
	if len(loaded) > 0 {
		err = d.store.MutateInvoices(func(current []lightning.Invoice) ([]lightning.Invoice, error) {
			return append(current, loaded...), nil
		})
		if err != nil {
			return fmt.Errorf("could not restore invoices: %w", err)
		}
	}

	recorded, err := d.repository.GetPayments(ctx)
	if err != nil {
		return fmt.Errorf("could not load payments: %w", err)
	}
	for _, payment := range recorded {
		if err := d.store.PutPayment(fromPaymentModel(payment)); err != nil {
			log.WithError(err).WithField("payment_hash", payment.PaymentHash).Warn("skipping stored payment")
		}
	}

	log.WithFields(log.Fields{
		"invoices": len(loaded),
		"payments": len(recorded),
	}).Info("restored wallet state")

	return nil
}

// checkIdentity compares the running node with the one seen last time. A
// different node means the stored invoices and payments belong to another
// wallet, which is only reported.
func (d *Daemon) checkIdentity(ctx context.Context) {
	current := d.store.LocalNodeID()
	if current == "" {
		return
	}

	previous, found, err := d.repository.GetFlag(ctx, models.FlagLastNodeID)
	if err != nil {
		log.WithError(err).Error("could not read last node id")

		return
	}
	if found && previous != current {
		log.WithFields(log.Fields{
			"previous": previous,
			"current":  current,
		}).Warn("node identity changed since last run")
	}

	if err := d.repository.SetFlag(ctx, models.FlagLastNodeID, current); err != nil {
		log.WithError(err).Error("could not save node id")
	}
}
