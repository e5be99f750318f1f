// Package invoices creates invoices through the node and keeps the store's
// invoice list in line with what the node reports.
package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/40acres/ettawallet/node"
	"github.com/40acres/ettawallet/store"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
)

var ErrInvoiceCreation = errors.New("could not create invoice")

// Readiness is the part of the node controller the ledger waits on.
type Readiness interface {
	AwaitReady(ctx context.Context, maxRetries int, interval time.Duration) error
}

type Ledger struct {
	node    lightning.Node
	store   *store.Store
	ready   Readiness
	clock   clock.Clock
	network lightning.Network

	maxRetries    int
	retryInterval time.Duration
}

type Option func(*Ledger)

func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithNetwork sets the network used to decode payment requests.
func WithNetwork(network lightning.Network) Option {
	return func(l *Ledger) {
		l.network = network
	}
}

func WithRetries(maxRetries int, interval time.Duration) Option {
	return func(l *Ledger) {
		l.maxRetries = maxRetries
		l.retryInterval = interval
	}
}

func NewLedger(n lightning.Node, s *store.Store, ready Readiness, opts ...Option) *Ledger {
	l := &Ledger{
		node:          n,
		store:         s,
		ready:         ready,
		clock:         clock.NewDefaultClock(),
		network:       lightning.Mainnet,
		maxRetries:    node.DefaultMaxRetries,
		retryInterval: node.DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// CreateInvoice mints an invoice once the node is ready and stores it by
// payment hash. When the node already knows that hash its record replaces
// the requested values. Nothing is stored on failure.
func (l *Ledger) CreateInvoice(ctx context.Context, amount money.Money, description string, expiry time.Duration) (lightning.Invoice, error) {
	if !l.store.Status().AtLeastRunning() {
		if err := l.ready.AwaitReady(ctx, l.maxRetries, l.retryInterval); err != nil {
			return lightning.Invoice{}, fmt.Errorf("%w: %w", ErrInvoiceCreation, err)
		}
	}

	created, err := l.node.CreateInvoice(ctx, amount, description, expiry)
	if err != nil {
		return lightning.Invoice{}, fmt.Errorf("%w: %w", ErrInvoiceCreation, err)
	}
	if created == nil || created.PaymentHash == "" {
		return lightning.Invoice{}, fmt.Errorf("%w: %w", ErrInvoiceCreation, store.ErrMissingPaymentHash)
	}

	invoice := *created
	logger := log.WithField("payment_hash", invoice.PaymentHash)

	records, err := l.node.ListInvoices(ctx)
	if err != nil {
		logger.WithError(err).Warn("could not list node invoices, keeping created record")
	}
	for _, record := range records {
		if record.PaymentHash == invoice.PaymentHash {
			logger.Debug("adopting node record")
			if record.PayeePublicKey == "" {
				record.PayeePublicKey = invoice.PayeePublicKey
			}
			invoice = record

			break
		}
	}
	invoice.PayeePublicKey = l.payee(invoice)

	if err := l.store.AddInvoice(invoice); err != nil {
		return lightning.Invoice{}, fmt.Errorf("%w: %w", ErrInvoiceCreation, err)
	}
	logger.WithField("amount", invoice.AmountSats).Info("invoice created")

	return invoice, nil
}

// payee fills a missing payee from the payment request, then from the
// session identity.
func (l *Ledger) payee(invoice lightning.Invoice) string {
	if invoice.PayeePublicKey != "" {
		return invoice.PayeePublicKey
	}

	if invoice.PaymentRequest != "" {
		decoded, err := lightning.DecodeInvoice(invoice.PaymentRequest, l.network)
		if err == nil && decoded.PayeePublicKey != "" {
			return decoded.PayeePublicKey
		}
		if err != nil {
			log.WithError(err).WithField("payment_hash", invoice.PaymentHash).Debug("could not decode payment request")
		}
	}

	return l.store.LocalNodeID()
}

// PruneExpired removes every invoice whose created_at + expiry is before now
// and returns the removed entries.
func (l *Ledger) PruneExpired(now time.Time) []lightning.Invoice {
	var removed []lightning.Invoice
	err := l.store.MutateInvoices(func(invoices []lightning.Invoice) ([]lightning.Invoice, error) {
		removed = nil
		kept := invoices[:0]
		for _, inv := range invoices {
			if inv.IsExpired(now) {
				removed = append(removed, inv)

				continue
			}
			kept = append(kept, inv)
		}

		return kept, nil
	})
	if err != nil {
		log.WithError(err).Error("could not prune expired invoices")

		return nil
	}
	if len(removed) > 0 {
		log.WithField("count", len(removed)).Info("expired invoices pruned")
	}

	return removed
}

func (l *Ledger) PruneExpiredNow() []lightning.Invoice {
	return l.PruneExpired(l.clock.Now())
}

func (l *Ledger) FindByHash(hash string) (lightning.Invoice, bool) {
	return l.store.Invoice(hash)
}

// Cancel drops the invoice from the ledger. The node keeps its own record.
func (l *Ledger) Cancel(hash string) bool {
	return l.store.RemoveInvoice(hash)
}

// Reconcile overwrites cached invoices with the node's records for the same
// hash and returns the ones that became settled. Records for hashes the
// ledger does not hold are ignored.
func (l *Ledger) Reconcile(records []lightning.Invoice) ([]lightning.Invoice, error) {
	byHash := make(map[string]lightning.Invoice, len(records))
	for _, record := range records {
		if record.PaymentHash != "" {
			byHash[record.PaymentHash] = record
		}
	}

	var settled []lightning.Invoice
	err := l.store.MutateInvoices(func(invoices []lightning.Invoice) ([]lightning.Invoice, error) {
		settled = nil
		for i, cached := range invoices {
			record, ok := byHash[cached.PaymentHash]
			if !ok {
				continue
			}
			if record.PayeePublicKey == "" {
				record.PayeePublicKey = cached.PayeePublicKey
			}
			if record.Settled && !cached.Settled {
				settled = append(settled, record)
			}
			invoices[i] = record
		}

		return invoices, nil
	})
	if err != nil {
		return nil, err
	}

	return settled, nil
}
