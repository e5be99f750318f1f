package lnd

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/macaroons"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"gopkg.in/macaroon.v2"
)

// Client drives an lnd node over gRPC and implements lightning.Node.
type Client struct {
	lndClient       lnrpc.LightningClient
	stateClient     lnrpc.StateClient
	unlockerClient  lnrpc.WalletUnlockerClient
	closeConnection func()

	mu  sync.RWMutex
	cfg lightning.NodeConfig
}

var _ lightning.Node = (*Client)(nil)

type Option func(*Options)

func WithLndEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.lndEndpoint = endpoint
	}
}

func WithMacaroonFilePath(path string) Option {
	return func(o *Options) {
		o.macaroonFilePath = path
	}
}

func WithTLSCertFilePath(path string) Option {
	return func(o *Options) {
		o.tlsCertFilePath = path
	}
}

func WithNetwork(network lightning.Network) Option {
	return func(o *Options) {
		o.network = network
	}
}

func WithFs(fs afero.Fs) Option {
	return func(o *Options) {
		o.fs = fs
	}
}

type Options struct {
	lndEndpoint      string
	macaroonFilePath string
	tlsCertFilePath  string
	network          lightning.Network
	fs               afero.Fs
}

var (
	ErrWalletNotInitialized = errors.New("lnd wallet has not been created")
	ErrNoPaymentHash        = errors.New("lnd returned an invoice without payment hash")
)

// NewClient creates a lnd client from macaroon and cert file locations.
// The gRPC connection is established lazily on the first call.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	options := Options{
		lndEndpoint:      "localhost:10009",
		macaroonFilePath: "/root/.lnd/data/chain/bitcoin/{Network}/admin.macaroon",
		tlsCertFilePath:  "/root/.lnd/tls.cert",
		network:          lightning.Mainnet,
		fs:               afero.NewOsFs(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	options.macaroonFilePath = strings.ReplaceAll(options.macaroonFilePath, "{Network}", string(options.network))

	macaroonFileBytes, err := afero.ReadFile(options.fs, options.macaroonFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed reading macaroon file: %w", err)
	}

	certBytes, err := afero.ReadFile(options.fs, options.tlsCertFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed reading TLS cert file: %w", err)
	}
	creds := credentials.NewClientTLSFromCert(loadCertPool(certBytes), "")

	mac := &macaroon.Macaroon{}
	err = mac.UnmarshalBinary(macaroonFileBytes)
	if err != nil {
		return nil, fmt.Errorf("failed unmarshalling macaroon: %w", err)
	}

	macCred, err := macaroons.NewMacaroonCredential(mac)
	if err != nil {
		return nil, fmt.Errorf("failed creating macaroon credentials: %w", err)
	}

	conn, err := grpc.NewClient(options.lndEndpoint, grpc.WithTransportCredentials(creds), grpc.WithPerRPCCredentials(macCred))
	if err != nil {
		return nil, fmt.Errorf("failed connecting to LND node: %w", err)
	}

	client := newClient(lnrpc.NewLightningClient(conn), lnrpc.NewStateClient(conn), lnrpc.NewWalletUnlockerClient(conn))
	client.cfg.Network = options.network
	client.closeConnection = func() {
		err := conn.Close()
		if err != nil {
			log.WithError(err).Error("error closing connection")
		}
	}

	return client, nil
}

func newClient(lndClient lnrpc.LightningClient, stateClient lnrpc.StateClient, unlockerClient lnrpc.WalletUnlockerClient) *Client {
	return &Client{
		lndClient:       lndClient,
		stateClient:     stateClient,
		unlockerClient:  unlockerClient,
		closeConnection: func() {},
	}
}

func (c *Client) config() lightning.NodeConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cfg
}

// StartNode unlocks the wallet when lnd is waiting for it. lnd brings up its
// RPC server on its own once unlocked.
func (c *Client) StartNode(ctx context.Context, cfg lightning.NodeConfig) error {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()

	state, err := c.stateClient.GetState(ctx, &lnrpc.GetStateRequest{})
	if err != nil {
		return fmt.Errorf("could not get wallet state: %w", err)
	}

	logger := log.WithField("state", state.State.String())
	switch state.State {
	case lnrpc.WalletState_NON_EXISTING:
		return ErrWalletNotInitialized
	case lnrpc.WalletState_LOCKED:
		logger.Info("unlocking lnd wallet")
		_, err := c.unlockerClient.UnlockWallet(ctx, &lnrpc.UnlockWalletRequest{
			WalletPassword: []byte(cfg.WalletPassword),
		})
		if err != nil {
			return fmt.Errorf("could not unlock wallet: %w", err)
		}
	default:
		logger.Debug("lnd already starting")
	}

	return nil
}

func (c *Client) IsNodeRunning(ctx context.Context) bool {
	state, err := c.stateClient.GetState(ctx, &lnrpc.GetStateRequest{})
	if err != nil {
		log.WithError(err).Debug("lnd state not available")

		return false
	}

	return state.State == lnrpc.WalletState_SERVER_ACTIVE
}

func (c *Client) CreateInvoice(ctx context.Context, amountSats money.Money, description string, expiry time.Duration) (*lightning.Invoice, error) {
	res, err := c.lndClient.AddInvoice(ctx, &lnrpc.Invoice{
		Value:      amountSats.Sats(),
		Memo:       description,
		Expiry:     int64(expiry.Seconds()),
		CltvExpiry: lightning.DefaultCltvExpiry,
	})
	if err != nil {
		return nil, err
	}
	if len(res.RHash) == 0 {
		return nil, ErrNoPaymentHash
	}

	info, err := c.lndClient.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return nil, fmt.Errorf("could not get node info: %w", err)
	}

	created, err := c.lndClient.LookupInvoice(ctx, &lnrpc.PaymentHash{RHash: res.RHash})
	if err != nil {
		log.WithError(err).Warn("could not look up created invoice, using request values")

		return &lightning.Invoice{
			PaymentHash:    hex.EncodeToString(res.RHash),
			PayeePublicKey: info.IdentityPubkey,
			AmountSats:     amountSats,
			Description:    description,
			CreatedAt:      time.Now(),
			ExpirySeconds:  int64(expiry.Seconds()),
			PaymentRequest: res.PaymentRequest,
		}, nil
	}

	return invoiceFromRPC(created, info.IdentityPubkey)
}

func (c *Client) ListInvoices(ctx context.Context) ([]lightning.Invoice, error) {
	info, err := c.lndClient.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return nil, fmt.Errorf("could not get node info: %w", err)
	}

	res, err := c.lndClient.ListInvoices(ctx, &lnrpc.ListInvoiceRequest{
		NumMaxInvoices: 1000,
		Reversed:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list invoices: %w", err)
	}

	invoices := make([]lightning.Invoice, 0, len(res.Invoices))
	for _, inv := range res.Invoices {
		invoice, err := invoiceFromRPC(inv, info.IdentityPubkey)
		if err != nil {
			log.WithError(err).Warn("skipping invoice")

			continue
		}
		invoices = append(invoices, *invoice)
	}

	return invoices, nil
}

func (c *Client) ListPayments(ctx context.Context) ([]lightning.Invoice, error) {
	res, err := c.lndClient.ListPayments(ctx, &lnrpc.ListPaymentsRequest{
		IncludeIncomplete: false,
		MaxPayments:       1000,
		Reversed:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list payments: %w", err)
	}

	network := c.config().Network
	payments := make([]lightning.Invoice, 0, len(res.Payments))
	for _, payment := range res.Payments {
		if payment.Status != lnrpc.Payment_SUCCEEDED || payment.PaymentRequest == "" {
			continue
		}

		invoice, err := lightning.DecodeInvoice(payment.PaymentRequest, network)
		if err != nil {
			log.WithError(err).WithField("payment_hash", payment.PaymentHash).Warn("skipping payment")

			continue
		}
		invoice.Settled = true
		payments = append(payments, *invoice)
	}

	return payments, nil
}

func (c *Client) ConnectPeers(ctx context.Context) error {
	var errs []error
	for _, peer := range c.config().Peers {
		_, err := c.lndClient.ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
			Addr: &lnrpc.LightningAddress{
				Pubkey: peer.PubKey,
				Host:   peer.Host,
			},
			Perm:    true,
			Timeout: 30,
		})
		if err != nil && !strings.Contains(err.Error(), "already connected") {
			errs = append(errs, fmt.Errorf("peer %s: %w", peer, err))

			continue
		}
		log.WithField("peer", peer.String()).Debug("peer connected")
	}

	return errors.Join(errs...)
}

func (c *Client) GetChannels(ctx context.Context) (map[string]lightning.Channel, error) {
	res, err := c.lndClient.ListChannels(ctx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		return nil, fmt.Errorf("could not list channels: %w", err)
	}

	channels := make(map[string]lightning.Channel, len(res.Channels))
	for _, ch := range res.Channels {
		channel, err := channelFromRPC(ch)
		if err != nil {
			log.WithError(err).WithField("channel_point", ch.ChannelPoint).Warn("skipping channel")

			continue
		}
		channels[channel.ChannelID] = channel
	}
	log.WithField("channels", sortedChannelIDs(channels)).Debug("channels fetched")

	return channels, nil
}

func (c *Client) GetClaimableBalance(ctx context.Context) (money.Money, error) {
	res, err := c.lndClient.PendingChannels(ctx, &lnrpc.PendingChannelsRequest{})
	if err != nil {
		return 0, fmt.Errorf("could not get pending channels: %w", err)
	}

	return money.NewFromSats(res.TotalLimboBalance)
}

func (c *Client) GetNodeIdentity(ctx context.Context) (*lightning.NodeIdentity, error) {
	info, err := c.lndClient.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return nil, fmt.Errorf("could not get node info: %w", err)
	}

	return &lightning.NodeIdentity{
		NodeID: info.IdentityPubkey,
		Version: lightning.NodeVersion{
			Version: info.Version,
			Commit:  info.CommitHash,
		},
	}, nil
}

// CloseConnection closes the connection with the lnd node
func (c *Client) CloseConnection() {
	c.closeConnection()
}

func invoiceFromRPC(inv *lnrpc.Invoice, payee string) (*lightning.Invoice, error) {
	if len(inv.RHash) == 0 {
		return nil, ErrNoPaymentHash
	}

	amount, err := money.NewFromSats(inv.Value)
	if err != nil {
		return nil, err
	}

	return &lightning.Invoice{
		PaymentHash:    hex.EncodeToString(inv.RHash),
		PayeePublicKey: payee,
		AmountSats:     amount,
		Description:    inv.Memo,
		CreatedAt:      time.Unix(inv.CreationDate, 0),
		ExpirySeconds:  inv.Expiry,
		PaymentRequest: inv.PaymentRequest,
		Settled:        inv.State == lnrpc.Invoice_SETTLED,
	}, nil
}

func channelFromRPC(ch *lnrpc.Channel) (lightning.Channel, error) {
	capacity, err := money.NewFromSats(ch.Capacity)
	if err != nil {
		return lightning.Channel{}, err
	}
	local, err := money.NewFromSats(ch.LocalBalance)
	if err != nil {
		return lightning.Channel{}, err
	}
	remote, err := money.NewFromSats(ch.RemoteBalance)
	if err != nil {
		return lightning.Channel{}, err
	}

	// ListChannels only reports channels that finished opening.
	return lightning.Channel{
		ChannelID:         ch.ChannelPoint,
		PeerPublicKey:     ch.RemotePubkey,
		CapacitySats:      capacity,
		LocalBalanceSats:  local,
		RemoteBalanceSats: remote,
		IsOpen:            true,
		IsActive:          ch.Active,
	}, nil
}

// sortedChannelIDs is used for deterministic logging of channel sets.
func sortedChannelIDs(channels map[string]lightning.Channel) []string {
	ids := make([]string, 0, len(channels))
	for id := range channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Helper function to load a certificate pool from cert bytes
func loadCertPool(certBytes []byte) *x509.CertPool {
	cp := x509.NewCertPool()
	cp.AppendCertsFromPEM(certBytes)

	return cp
}
