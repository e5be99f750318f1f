package lightning

import (
	"context"
	"time"

	"github.com/40acres/ettawallet/money"
)

// DefaultCltvExpiry is the final CLTV delta requested for new invoices.
const DefaultCltvExpiry uint64 = 144

// Invoice is a BOLT11 invoice as reported by the node. PaymentHash is the
// unique key everywhere in the wallet.
type Invoice struct {
	PaymentHash    string      `json:"payment_hash"`
	PayeePublicKey string      `json:"payee_public_key"`
	AmountSats     money.Money `json:"amount_sats"`
	Description    string      `json:"description"`
	CreatedAt      time.Time   `json:"created_at"`
	ExpirySeconds  int64       `json:"expiry_seconds"`
	PaymentRequest string      `json:"payment_request"`
	Settled        bool        `json:"settled"`
}

// ExpiresAt returns the instant after which the invoice can no longer be paid.
func (i Invoice) ExpiresAt() time.Time {
	return i.CreatedAt.Add(time.Duration(i.ExpirySeconds) * time.Second)
}

// IsExpired reports whether created_at + expiry is strictly before now.
func (i Invoice) IsExpired(now time.Time) bool {
	return i.ExpiresAt().Before(now)
}

type Channel struct {
	ChannelID         string      `json:"channel_id"`
	PeerPublicKey     string      `json:"peer_public_key"`
	CapacitySats      money.Money `json:"capacity_sats"`
	LocalBalanceSats  money.Money `json:"local_balance_sats"`
	RemoteBalanceSats money.Money `json:"remote_balance_sats"`
	IsOpen            bool        `json:"is_open"`
	// IsActive is false while the peer is offline, the channel stays open.
	IsActive          bool        `json:"is_active"`
}

type NodeVersion struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// NodeIdentity identifies the running node session. An empty NodeID means the
// node has not been identified yet.
type NodeIdentity struct {
	NodeID  string      `json:"node_id"`
	Version NodeVersion `json:"version"`
}

type PeerAddress struct {
	PubKey string `json:"pubkey"`
	Host   string `json:"host"`
}

func (p PeerAddress) String() string {
	return p.PubKey + "@" + p.Host
}

type NodeConfig struct {
	Network        Network
	WalletPassword string
	Peers          []PeerAddress
}

// Node is the black-box Lightning engine. Every call may block on the node.
//
//go:generate go tool mockgen -destination=mock.go -package=lightning . Node
type Node interface {
	StartNode(ctx context.Context, cfg NodeConfig) error
	IsNodeRunning(ctx context.Context) bool
	CreateInvoice(ctx context.Context, amountSats money.Money, description string, expiry time.Duration) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
	// ListPayments returns the invoices paid by this node, as decoded snapshots.
	ListPayments(ctx context.Context) ([]Invoice, error)
	// ConnectPeers is best effort, callers only log its error.
	ConnectPeers(ctx context.Context) error
	GetChannels(ctx context.Context) (map[string]Channel, error)
	GetClaimableBalance(ctx context.Context) (money.Money, error)
	GetNodeIdentity(ctx context.Context) (*NodeIdentity, error)
}
