// Package store holds the in-memory view of the node session: status and
// identity, invoices, channels, claimable balance, payments and peers.
//
// The Store is the only owner of those collections. Components compute the
// next state and commit it through the typed mutations below; every committed
// mutation is published to subscribers as an Update.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/lightningnetwork/lnd/subscribe"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMissingIdentity    = errors.New("node identity is not known")
	ErrMissingPaymentHash = errors.New("invoice has no payment hash")
	ErrInvalidTransition  = errors.New("invalid node status transition")
)

// Group names the field group touched by a mutation.
type Group string

const (
	GroupNode     Group = "node"
	GroupInvoices Group = "invoices"
	GroupChannels Group = "channels"
	GroupBalance  Group = "balance"
	GroupPayments Group = "payments"
	GroupPeers    Group = "peers"
)

type Direction string

const (
	Sent     Direction = "SENT"
	Received Direction = "RECEIVED"
)

type Payment struct {
	PaymentHash string            `json:"payment_hash"`
	Invoice     lightning.Invoice `json:"invoice"`
	Direction   Direction         `json:"direction"`
}

// ChannelState is the channel map plus the ordered set of channel ids seen open.
type ChannelState struct {
	Channels       map[string]lightning.Channel `json:"channels"`
	OpenChannelIDs []string                     `json:"open_channel_ids"`
}

func (c ChannelState) clone() ChannelState {
	channels := make(map[string]lightning.Channel, len(c.Channels))
	for id, ch := range c.Channels {
		channels[id] = ch
	}

	return ChannelState{
		Channels:       channels,
		OpenChannelIDs: slices.Clone(c.OpenChannelIDs),
	}
}

// Snapshot is a deep copy of the whole store.
type Snapshot struct {
	Status           NodeStatus              `json:"status"`
	NodeStarted      bool                    `json:"node_started"`
	Identity         *lightning.NodeIdentity `json:"identity,omitempty"`
	Invoices         []lightning.Invoice     `json:"invoices"`
	Channels         ChannelState            `json:"channels"`
	ClaimableBalance money.Money             `json:"claimable_balance"`
	Payments         map[string]Payment      `json:"payments"`
	Peers            []lightning.PeerAddress `json:"peers"`
}

// Update is what subscribers receive after each committed mutation.
type Update struct {
	Group    Group
	Snapshot Snapshot
}

type Store struct {
	mu          sync.RWMutex
	status      NodeStatus
	nodeStarted bool
	identity    *lightning.NodeIdentity
	invoices    []lightning.Invoice
	channels    ChannelState
	claimable   money.Money
	payments    map[string]Payment
	peers       []lightning.PeerAddress

	// publishMu keeps updates in commit order.
	publishMu sync.Mutex
	updates   *subscribe.Server
}

// New returns an empty store whose update server is already running.
func New() *Store {
	s := &Store{
		status:   Offline,
		channels: ChannelState{Channels: map[string]lightning.Channel{}},
		payments: map[string]Payment{},
		updates:  subscribe.NewServer(),
	}
	if err := s.updates.Start(); err != nil {
		log.WithError(err).Error("could not start store update server")
	}

	return s
}

// Stop shuts the update server down. Subscribers see their Quit channel close.
func (s *Store) Stop() error {
	return s.updates.Stop()
}

// Subscribe registers a new observer. Each item on Updates() is an Update.
func (s *Store) Subscribe() (*subscribe.Client, error) {
	return s.updates.Subscribe()
}

func (s *Store) commit(group Group, mutate func() error) error {
	s.mu.Lock()
	if err := mutate(); err != nil {
		s.mu.Unlock()

		return err
	}
	snapshot := s.snapshotLocked()
	s.publishMu.Lock()
	s.mu.Unlock()

	defer s.publishMu.Unlock()
	if err := s.updates.SendUpdate(Update{Group: group, Snapshot: snapshot}); err != nil {
		log.WithError(err).WithField("group", group).Debug("store update not published")
	}

	return nil
}

// SetNodeStatus moves the status machine. Running and Complete need a known
// identity, and reaching Complete marks the node as started.
func (s *Store) SetNodeStatus(next NodeStatus) error {
	return s.commit(GroupNode, func() error {
		if !s.status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, next)
		}
		if next.AtLeastRunning() && (s.identity == nil || s.identity.NodeID == "") {
			return ErrMissingIdentity
		}
		s.status = next
		if next == Complete {
			s.nodeStarted = true
		}

		return nil
	})
}

// MarkRunning stores the session identity and moves to Running in one commit.
func (s *Store) MarkRunning(identity lightning.NodeIdentity) error {
	return s.commit(GroupNode, func() error {
		if identity.NodeID == "" {
			return ErrMissingIdentity
		}
		if !s.status.CanTransition(Running) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, Running)
		}
		s.identity = &identity
		s.status = Running

		return nil
	})
}

// ResetNode ends the node session: back to Offline with no identity.
func (s *Store) ResetNode() {
	_ = s.commit(GroupNode, func() error {
		s.status = Offline
		s.nodeStarted = false
		s.identity = nil

		return nil
	})
}

func (s *Store) Status() NodeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

func (s *Store) NodeStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nodeStarted
}

func (s *Store) Identity() (lightning.NodeIdentity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return lightning.NodeIdentity{}, false
	}

	return *s.identity, true
}

// LocalNodeID returns the identity pubkey, or "" before the node is identified.
func (s *Store) LocalNodeID() string {
	identity, _ := s.Identity()

	return identity.NodeID
}

// AddInvoice inserts the invoice or replaces the entry with the same hash in place.
func (s *Store) AddInvoice(invoice lightning.Invoice) error {
	if invoice.PaymentHash == "" {
		return ErrMissingPaymentHash
	}

	return s.commit(GroupInvoices, func() error {
		s.invoices = upsertInvoice(s.invoices, invoice)

		return nil
	})
}

// RemoveInvoice drops the entry for hash and reports whether there was one.
func (s *Store) RemoveInvoice(hash string) bool {
	removed := false
	_ = s.commit(GroupInvoices, func() error {
		before := len(s.invoices)
		s.invoices = slices.DeleteFunc(s.invoices, func(inv lightning.Invoice) bool {
			return inv.PaymentHash == hash
		})
		removed = len(s.invoices) != before

		return nil
	})

	return removed
}

// MutateInvoices hands a copy of the invoice list to fn and commits what it
// returns. The result must not hold empty hashes; repeated hashes collapse
// into the first position with the last value.
func (s *Store) MutateInvoices(fn func([]lightning.Invoice) ([]lightning.Invoice, error)) error {
	return s.commit(GroupInvoices, func() error {
		next, err := fn(slices.Clone(s.invoices))
		if err != nil {
			return err
		}

		normalized := make([]lightning.Invoice, 0, len(next))
		for _, inv := range next {
			if inv.PaymentHash == "" {
				return ErrMissingPaymentHash
			}
			normalized = upsertInvoice(normalized, inv)
		}
		s.invoices = normalized

		return nil
	})
}

func (s *Store) Invoice(hash string) (lightning.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.invoices, func(inv lightning.Invoice) bool {
		return inv.PaymentHash == hash
	})
	if i < 0 {
		return lightning.Invoice{}, false
	}

	return s.invoices[i], true
}

func (s *Store) Invoices() []lightning.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.invoices)
}

// MutateChannels hands a copy of the channel state to fn and commits its result.
func (s *Store) MutateChannels(fn func(ChannelState) ChannelState) {
	_ = s.commit(GroupChannels, func() error {
		next := fn(s.channels.clone())
		if next.Channels == nil {
			next.Channels = map[string]lightning.Channel{}
		}
		s.channels = next

		return nil
	})
}

func (s *Store) Channels() ChannelState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.channels.clone()
}

func (s *Store) SetClaimableBalance(amount money.Money) {
	_ = s.commit(GroupBalance, func() error {
		s.claimable = amount

		return nil
	})
}

func (s *Store) ClaimableBalance() money.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.claimable
}

// PutPayment stores the payment, overwriting any entry for the same hash.
func (s *Store) PutPayment(payment Payment) error {
	if payment.PaymentHash == "" {
		return ErrMissingPaymentHash
	}

	return s.commit(GroupPayments, func() error {
		s.payments[payment.PaymentHash] = payment

		return nil
	})
}

func (s *Store) Payment(hash string) (Payment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[hash]

	return p, ok
}

func (s *Store) Payments() map[string]Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := make(map[string]Payment, len(s.payments))
	for hash, p := range s.payments {
		payments[hash] = p
	}

	return payments
}

// AddPeer records a peer once per pubkey; a later host replaces the old one.
func (s *Store) AddPeer(peer lightning.PeerAddress) {
	_ = s.commit(GroupPeers, func() error {
		i := slices.IndexFunc(s.peers, func(p lightning.PeerAddress) bool {
			return p.PubKey == peer.PubKey
		})
		if i >= 0 {
			s.peers[i] = peer
		} else {
			s.peers = append(s.peers, peer)
		}

		return nil
	})
}

func (s *Store) Peers() []lightning.PeerAddress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.peers)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	var identity *lightning.NodeIdentity
	if s.identity != nil {
		id := *s.identity
		identity = &id
	}

	payments := make(map[string]Payment, len(s.payments))
	for hash, p := range s.payments {
		payments[hash] = p
	}

	return Snapshot{
		Status:           s.status,
		NodeStarted:      s.nodeStarted,
		Identity:         identity,
		Invoices:         slices.Clone(s.invoices),
		Channels:         s.channels.clone(),
		ClaimableBalance: s.claimable,
		Payments:         payments,
		Peers:            slices.Clone(s.peers),
	}
}

func upsertInvoice(invoices []lightning.Invoice, invoice lightning.Invoice) []lightning.Invoice {
	i := slices.IndexFunc(invoices, func(inv lightning.Invoice) bool {
		return inv.PaymentHash == invoice.PaymentHash
	})
	if i >= 0 {
		invoices[i] = invoice

		return invoices
	}

	return append(invoices, invoice)
}
