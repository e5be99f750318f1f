package daemon

import (
	"context"
	"fmt"

	"github.com/40acres/ettawallet/database"
	"github.com/40acres/ettawallet/database/models"
	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/logging"
	"github.com/40acres/ettawallet/store"
	log "github.com/sirupsen/logrus"
)

// Persister mirrors invoice and payment changes from the store into the
// repository. Only the difference against the last seen snapshot is written.
type Persister struct {
	repository database.Repository
	invoices   map[string]lightning.Invoice
	payments   map[string]store.Payment
	logger     *log.Entry
}

func NewPersister(repository database.Repository, baseline store.Snapshot) *Persister {
	p := &Persister{
		repository: repository,
		invoices:   make(map[string]lightning.Invoice, len(baseline.Invoices)),
		payments:   make(map[string]store.Payment, len(baseline.Payments)),
		logger:     logging.NewComponentLogger("persister"),
	}
	for _, invoice := range baseline.Invoices {
		p.invoices[invoice.PaymentHash] = invoice
	}
	for hash, payment := range baseline.Payments {
		p.payments[hash] = payment
	}

	return p
}

// Run consumes store updates until ctx is done or the store stops.
func (p *Persister) Run(ctx context.Context, client updateSource) {
	for {
		select {
		case u := <-client.Updates():
			update, ok := u.(store.Update)
			if !ok {
				continue
			}
			if err := p.Apply(ctx, update); err != nil {
				p.logger.WithError(err).WithField("group", update.Group).Error("could not persist store update")
			}
		case <-client.Quit():
			return
		case <-ctx.Done():
			return
		}
	}
}

type updateSource interface {
	Updates() <-chan interface{}
	Quit() <-chan struct{}
}

// Apply writes the part of the snapshot that changed since the last update.
func (p *Persister) Apply(ctx context.Context, update store.Update) error {
	switch update.Group {
	case store.GroupInvoices:
		return p.applyInvoices(ctx, update.Snapshot.Invoices)
	case store.GroupPayments:
		return p.applyPayments(ctx, update.Snapshot.Payments)
	default:
		return nil
	}
}

func (p *Persister) applyInvoices(ctx context.Context, invoices []lightning.Invoice) error {
	next := make(map[string]lightning.Invoice, len(invoices))
	for _, invoice := range invoices {
		next[invoice.PaymentHash] = invoice
		if previous, ok := p.invoices[invoice.PaymentHash]; ok && invoiceEqual(previous, invoice) {
			continue
		}
		if err := p.repository.SaveInvoice(ctx, models.NewInvoice(invoice)); err != nil {
			return fmt.Errorf("could not save invoice %s: %w", invoice.PaymentHash, err)
		}
	}

	var removed []string
	for hash := range p.invoices {
		if _, ok := next[hash]; !ok {
			removed = append(removed, hash)
		}
	}
	if len(removed) > 0 {
		if err := p.repository.DeleteInvoices(ctx, removed...); err != nil {
			return fmt.Errorf("could not delete invoices: %w", err)
		}
	}

	p.invoices = next

	return nil
}

func (p *Persister) applyPayments(ctx context.Context, payments map[string]store.Payment) error {
	for hash, payment := range payments {
		if previous, ok := p.payments[hash]; ok && previous.Direction == payment.Direction && invoiceEqual(previous.Invoice, payment.Invoice) {
			continue
		}
		if err := p.repository.SavePayment(ctx, toPaymentModel(payment)); err != nil {
			return fmt.Errorf("could not save payment %s: %w", hash, err)
		}
		p.payments[hash] = payment
	}

	return nil
}

func invoiceEqual(a, b lightning.Invoice) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	a.CreatedAt = b.CreatedAt

	return a == b
}

func toPaymentModel(payment store.Payment) *models.Payment {
	return &models.Payment{
		PaymentHash: payment.PaymentHash,
		Direction:   models.PaymentDirection(payment.Direction),
		Invoice:     payment.Invoice,
	}
}

func fromPaymentModel(payment models.Payment) store.Payment {
	return store.Payment{
		PaymentHash: payment.PaymentHash,
		Direction:   store.Direction(payment.Direction),
		Invoice:     payment.Invoice,
	}
}
