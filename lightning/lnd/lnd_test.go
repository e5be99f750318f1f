package lnd

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"gopkg.in/macaroon.v2"
)

type fakeLightning struct {
	lnrpc.LightningClient

	info       *lnrpc.GetInfoResponse
	addRes     *lnrpc.AddInvoiceResponse
	addErr     error
	lookup     *lnrpc.Invoice
	lookupErr  error
	invoices   []*lnrpc.Invoice
	payments   []*lnrpc.Payment
	channels   []*lnrpc.Channel
	limbo      int64
	connectErr map[string]error
	connected  []string
}

func (f *fakeLightning) GetInfo(ctx context.Context, in *lnrpc.GetInfoRequest, opts ...grpc.CallOption) (*lnrpc.GetInfoResponse, error) {
	return f.info, nil
}

func (f *fakeLightning) AddInvoice(ctx context.Context, in *lnrpc.Invoice, opts ...grpc.CallOption) (*lnrpc.AddInvoiceResponse, error) {
	return f.addRes, f.addErr
}

func (f *fakeLightning) LookupInvoice(ctx context.Context, in *lnrpc.PaymentHash, opts ...grpc.CallOption) (*lnrpc.Invoice, error) {
	return f.lookup, f.lookupErr
}

func (f *fakeLightning) ListInvoices(ctx context.Context, in *lnrpc.ListInvoiceRequest, opts ...grpc.CallOption) (*lnrpc.ListInvoiceResponse, error) {
	return &lnrpc.ListInvoiceResponse{Invoices: f.invoices}, nil
}

func (f *fakeLightning) ListPayments(ctx context.Context, in *lnrpc.ListPaymentsRequest, opts ...grpc.CallOption) (*lnrpc.ListPaymentsResponse, error) {
	return &lnrpc.ListPaymentsResponse{Payments: f.payments}, nil
}

func (f *fakeLightning) ListChannels(ctx context.Context, in *lnrpc.ListChannelsRequest, opts ...grpc.CallOption) (*lnrpc.ListChannelsResponse, error) {
	return &lnrpc.ListChannelsResponse{Channels: f.channels}, nil
}

func (f *fakeLightning) PendingChannels(ctx context.Context, in *lnrpc.PendingChannelsRequest, opts ...grpc.CallOption) (*lnrpc.PendingChannelsResponse, error) {
	return &lnrpc.PendingChannelsResponse{TotalLimboBalance: f.limbo}, nil
}

func (f *fakeLightning) ConnectPeer(ctx context.Context, in *lnrpc.ConnectPeerRequest, opts ...grpc.CallOption) (*lnrpc.ConnectPeerResponse, error) {
	if err := f.connectErr[in.Addr.Pubkey]; err != nil {
		return nil, err
	}
	f.connected = append(f.connected, in.Addr.Pubkey)

	return &lnrpc.ConnectPeerResponse{}, nil
}

type fakeState struct {
	lnrpc.StateClient

	state lnrpc.WalletState
	err   error
}

func (f *fakeState) GetState(ctx context.Context, in *lnrpc.GetStateRequest, opts ...grpc.CallOption) (*lnrpc.GetStateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &lnrpc.GetStateResponse{State: f.state}, nil
}

type fakeUnlocker struct {
	lnrpc.WalletUnlockerClient

	password []byte
}

func (f *fakeUnlocker) UnlockWallet(ctx context.Context, in *lnrpc.UnlockWalletRequest, opts ...grpc.CallOption) (*lnrpc.UnlockWalletResponse, error) {
	f.password = in.WalletPassword

	return &lnrpc.UnlockWalletResponse{}, nil
}

func TestNewClient_WithFSMacaroonAndCert(t *testing.T) {
	ctx := context.Background()

	// Create a memory file system
	memFs := afero.NewMemMapFs()

	// Generate a dummy TLS certificate
	cert := &x509.Certificate{}
	certBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	tlsCertPath := "/tls.cert"
	err := afero.WriteFile(memFs, tlsCertPath, certBytes, 0644)
	require.NoError(t, err)

	// Generate a dummy macaroon
	mac, err := macaroon.New([]byte("dummy-id"), []byte("dummy-location"), "dummy-root", macaroon.LatestVersion)
	require.NoError(t, err)
	macaroonBytes, err := mac.MarshalBinary()
	require.NoError(t, err)
	err = afero.WriteFile(memFs, "/regtest/admin.macaroon", macaroonBytes, 0644)
	require.NoError(t, err)

	client, err := NewClient(ctx,
		WithLndEndpoint("localhost:10009"),
		WithTLSCertFilePath(tlsCertPath),
		WithMacaroonFilePath("/{Network}/admin.macaroon"),
		WithNetwork(lightning.Regtest),
		WithFs(memFs),
	)
	require.NoError(t, err)
	t.Cleanup(client.CloseConnection)

	require.Equal(t, lightning.Regtest, client.config().Network)
}

func TestNewClient_MissingMacaroon(t *testing.T) {
	_, err := NewClient(context.Background(), WithFs(afero.NewMemMapFs()))
	require.Error(t, err)
	require.ErrorContains(t, err, "failed reading macaroon file")
}

func TestClient_StartNode(t *testing.T) {
	tests := []struct {
		name         string
		state        *fakeState
		wantErr      error
		wantUnlocked bool
	}{
		{
			name:    "Wallet does not exist",
			state:   &fakeState{state: lnrpc.WalletState_NON_EXISTING},
			wantErr: ErrWalletNotInitialized,
		},
		{
			name:         "Locked wallet is unlocked",
			state:        &fakeState{state: lnrpc.WalletState_LOCKED},
			wantUnlocked: true,
		},
		{
			name:  "Already active",
			state: &fakeState{state: lnrpc.WalletState_SERVER_ACTIVE},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unlocker := &fakeUnlocker{}
			client := newClient(&fakeLightning{}, tt.state, unlocker)

			err := client.StartNode(context.Background(), lightning.NodeConfig{WalletPassword: "hunter22"})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			if tt.wantUnlocked {
				require.Equal(t, []byte("hunter22"), unlocker.password)
			} else {
				require.Nil(t, unlocker.password)
			}
		})
	}
}

func TestClient_IsNodeRunning(t *testing.T) {
	state := &fakeState{state: lnrpc.WalletState_RPC_ACTIVE}
	client := newClient(&fakeLightning{}, state, &fakeUnlocker{})
	ctx := context.Background()

	require.False(t, client.IsNodeRunning(ctx))

	state.state = lnrpc.WalletState_SERVER_ACTIVE
	require.True(t, client.IsNodeRunning(ctx))

	state.err = errors.New("connection refused")
	require.False(t, client.IsNodeRunning(ctx))
}

func TestClient_CreateInvoice(t *testing.T) {
	rhash := lightning.TestPaymentHash[:]
	ln := &fakeLightning{
		info:   &lnrpc.GetInfoResponse{IdentityPubkey: lightning.TestNodeID},
		addRes: &lnrpc.AddInvoiceResponse{RHash: rhash, PaymentRequest: "lnbcrt1..."},
		lookup: &lnrpc.Invoice{
			RHash:          rhash,
			Memo:           "coffee",
			Value:          1000,
			CreationDate:   1700000000,
			Expiry:         3600,
			PaymentRequest: "lnbcrt1...",
			State:          lnrpc.Invoice_OPEN,
		},
	}
	client := newClient(ln, &fakeState{}, &fakeUnlocker{})

	invoice, err := client.CreateInvoice(context.Background(), 1000, "coffee", time.Hour)
	require.NoError(t, err)
	require.Equal(t, &lightning.Invoice{
		PaymentHash:    hex.EncodeToString(rhash),
		PayeePublicKey: lightning.TestNodeID,
		AmountSats:     money.Money(1000),
		Description:    "coffee",
		CreatedAt:      time.Unix(1700000000, 0),
		ExpirySeconds:  3600,
		PaymentRequest: "lnbcrt1...",
	}, invoice)

	ln.addRes = &lnrpc.AddInvoiceResponse{}
	_, err = client.CreateInvoice(context.Background(), 1000, "coffee", time.Hour)
	require.ErrorIs(t, err, ErrNoPaymentHash)

	ln.addErr = errors.New("amount too large")
	_, err = client.CreateInvoice(context.Background(), 1000, "coffee", time.Hour)
	require.ErrorContains(t, err, "amount too large")
}

func TestClient_ListInvoices(t *testing.T) {
	ln := &fakeLightning{
		info: &lnrpc.GetInfoResponse{IdentityPubkey: lightning.TestNodeID},
		invoices: []*lnrpc.Invoice{
			{RHash: []byte{0x01}, Value: 10, State: lnrpc.Invoice_SETTLED},
			{RHash: nil, Value: 20},
			{RHash: []byte{0x02}, Value: 30, State: lnrpc.Invoice_CANCELED},
		},
	}
	client := newClient(ln, &fakeState{}, &fakeUnlocker{})

	invoices, err := client.ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	require.Equal(t, "01", invoices[0].PaymentHash)
	require.True(t, invoices[0].Settled)
	require.Equal(t, lightning.TestNodeID, invoices[0].PayeePublicKey)
	require.Equal(t, "02", invoices[1].PaymentHash)
	require.False(t, invoices[1].Settled)
}

func TestClient_ListPayments(t *testing.T) {
	paymentRequest := lightning.CreateMockInvoice(t, 2500)
	ln := &fakeLightning{
		payments: []*lnrpc.Payment{
			{PaymentHash: lightning.TestPaymentHashHex, PaymentRequest: paymentRequest, Status: lnrpc.Payment_SUCCEEDED},
			{PaymentHash: "in-flight", PaymentRequest: paymentRequest, Status: lnrpc.Payment_IN_FLIGHT},
			{PaymentHash: "keysend", Status: lnrpc.Payment_SUCCEEDED},
		},
	}
	client := newClient(ln, &fakeState{}, &fakeUnlocker{})
	client.cfg.Network = lightning.Regtest

	payments, err := client.ListPayments(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Equal(t, lightning.TestPaymentHashHex, payments[0].PaymentHash)
	require.Equal(t, lightning.TestNodeID, payments[0].PayeePublicKey)
	require.Equal(t, money.Money(2500), payments[0].AmountSats)
	require.True(t, payments[0].Settled)
}

func TestClient_ConnectPeers(t *testing.T) {
	peerA := lightning.PeerAddress{PubKey: "02aa", Host: "a:9735"}
	peerB := lightning.PeerAddress{PubKey: "02bb", Host: "b:9735"}
	peerC := lightning.PeerAddress{PubKey: "02cc", Host: "c:9735"}
	ln := &fakeLightning{
		connectErr: map[string]error{
			"02bb": errors.New("already connected to peer: 02bb"),
			"02cc": errors.New("dial tcp: connection refused"),
		},
	}
	client := newClient(ln, &fakeState{state: lnrpc.WalletState_SERVER_ACTIVE}, &fakeUnlocker{})
	require.NoError(t, client.StartNode(context.Background(), lightning.NodeConfig{Peers: []lightning.PeerAddress{peerA, peerB, peerC}}))

	err := client.ConnectPeers(context.Background())
	require.Error(t, err)
	require.ErrorContains(t, err, "connection refused")
	require.NotContains(t, err.Error(), "02bb")
	require.Equal(t, []string{"02aa"}, ln.connected)
}

func TestClient_GetChannelsAndBalance(t *testing.T) {
	ln := &fakeLightning{
		channels: []*lnrpc.Channel{
			{ChannelPoint: "txid:0", RemotePubkey: "02aa", Capacity: 100000, LocalBalance: 60000, RemoteBalance: 39000, Active: true},
			{ChannelPoint: "txid:1", RemotePubkey: "02bb", Capacity: 50000, LocalBalance: 50000, Active: false},
			{ChannelPoint: "bad", LocalBalance: -1},
		},
		limbo: 1234,
	}
	client := newClient(ln, &fakeState{}, &fakeUnlocker{})
	ctx := context.Background()

	channels, err := client.GetChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	require.Equal(t, lightning.Channel{
		ChannelID:         "txid:0",
		PeerPublicKey:     "02aa",
		CapacitySats:      100000,
		LocalBalanceSats:  60000,
		RemoteBalanceSats: 39000,
		IsOpen:            true,
		IsActive:          true,
	}, channels["txid:0"])
	require.True(t, channels["txid:1"].IsOpen, "an inactive channel is still open")
	require.False(t, channels["txid:1"].IsActive)

	balance, err := client.GetClaimableBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, money.Money(1234), balance)
}
