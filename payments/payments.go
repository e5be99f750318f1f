// Package payments decides whether a settled invoice was sent or received by
// this node and records it in the store.
package payments

import (
	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/store"
	log "github.com/sirupsen/logrus"
)

type Direction = store.Direction

const (
	Sent     = store.Sent
	Received = store.Received
)

var ErrMissingIdentity = store.ErrMissingIdentity

// Classify returns Received when the invoice is payable to localNodeID and
// Sent otherwise. An invoice paid by the node to itself is Received.
func Classify(invoice lightning.Invoice, localNodeID string) (Direction, error) {
	if localNodeID == "" {
		return "", ErrMissingIdentity
	}
	if invoice.PayeePublicKey == localNodeID {
		return Received, nil
	}

	return Sent, nil
}

type Recorder struct {
	store *store.Store
}

func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// RecordPayment classifies the invoice and stores it under its payment hash,
// replacing any previous entry.
func (r *Recorder) RecordPayment(invoice lightning.Invoice, localNodeID string) (store.Payment, error) {
	direction, err := Classify(invoice, localNodeID)
	if err != nil {
		return store.Payment{}, err
	}

	payment := store.Payment{
		PaymentHash: invoice.PaymentHash,
		Invoice:     invoice,
		Direction:   direction,
	}
	if err := r.store.PutPayment(payment); err != nil {
		return store.Payment{}, err
	}

	log.WithFields(log.Fields{
		"payment_hash": payment.PaymentHash,
		"direction":    direction,
	}).Debug("payment recorded")

	return payment, nil
}

// RecordSettled records the invoice against the identity of the current session.
func (r *Recorder) RecordSettled(invoice lightning.Invoice) (store.Payment, error) {
	return r.RecordPayment(invoice, r.store.LocalNodeID())
}
