package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/40acres/ettawallet/database"
	"github.com/40acres/ettawallet/database/models"
	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/40acres/ettawallet/store"
	"github.com/lightningnetwork/lnd/ticker"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig() *Config {
	config := NewConfig()
	config.Network = lightning.Regtest
	config.MaxRetries = 3
	config.RetryIntervalMs = 1

	return config
}

func testInvoice(hash string, createdAt time.Time) lightning.Invoice {
	return lightning.Invoice{
		PaymentHash:    hash,
		PayeePublicKey: "node1",
		AmountSats:     1000,
		Description:    "coffee",
		CreatedAt:      createdAt,
		ExpirySeconds:  3600,
	}
}

func Test_Hydrate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repository := database.NewMockRepository(ctrl)
	n := lightning.NewMockNode(ctrl)
	ctx := context.Background()
	now := time.Now().UTC()

	d := New(testConfig(), n, repository, WithoutRPC(), WithTicker(ticker.NewForce(time.Hour)))
	t.Cleanup(func() { _ = d.Store().Stop() })

	repository.EXPECT().GetInvoices(ctx).Return([]models.Invoice{
		*models.NewInvoice(testInvoice("a", now)),
		*models.NewInvoice(testInvoice("b", now)),
	}, nil)
	repository.EXPECT().GetPayments(ctx).Return([]models.Payment{
		{PaymentHash: "a", Direction: models.DirectionReceived, Invoice: testInvoice("a", now)},
		{PaymentHash: "", Direction: models.DirectionSent},
	}, nil)

	require.NoError(t, d.hydrate(ctx))

	invoices := d.Store().Invoices()
	require.Len(t, invoices, 2)
	require.Equal(t, "a", invoices[0].PaymentHash)
	require.Equal(t, "b", invoices[1].PaymentHash)

	payment, ok := d.Store().Payment("a")
	require.True(t, ok)
	require.Equal(t, store.Received, payment.Direction)
	require.Len(t, d.Store().Payments(), 1)
}

func Test_HydrateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repository := database.NewMockRepository(ctrl)
	ctx := context.Background()

	d := New(testConfig(), lightning.NewMockNode(ctrl), repository, WithoutRPC(), WithTicker(ticker.NewForce(time.Hour)))
	t.Cleanup(func() { _ = d.Store().Stop() })

	repository.EXPECT().GetInvoices(ctx).Return(nil, errors.New("boom"))

	err := d.Start(ctx)
	require.ErrorContains(t, err, "could not load invoices")
}

func Test_CheckIdentity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		previous string
		found    bool
		warned   bool
	}{
		{
			name: "First run",
		},
		{
			name:     "Same node",
			previous: "node1",
			found:    true,
		},
		{
			name:     "Different node",
			previous: "node0",
			found:    true,
			warned:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repository := database.NewMockRepository(ctrl)
			hook := logtest.NewGlobal()
			t.Cleanup(func() { log.StandardLogger().ReplaceHooks(make(log.LevelHooks)) })

			d := New(testConfig(), lightning.NewMockNode(ctrl), repository, WithoutRPC(), WithTicker(ticker.NewForce(time.Hour)))
			t.Cleanup(func() { _ = d.Store().Stop() })
			require.NoError(t, d.Store().MarkRunning(lightning.NodeIdentity{NodeID: "node1"}))

			repository.EXPECT().GetFlag(ctx, models.FlagLastNodeID).Return(tt.previous, tt.found, nil)
			repository.EXPECT().SetFlag(ctx, models.FlagLastNodeID, "node1").Return(nil)

			d.checkIdentity(ctx)

			warned := false
			for _, entry := range hook.AllEntries() {
				if entry.Level == log.WarnLevel && entry.Message == "node identity changed since last run" {
					warned = true
				}
			}
			require.Equal(t, tt.warned, warned)
		})
	}
}

func Test_SyncOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	n := lightning.NewMockNode(ctrl)
	repository := database.NewMockRepository(ctrl)
	ctx := context.Background()
	now := time.Now().UTC()

	d := New(testConfig(), n, repository, WithoutRPC(), WithTicker(ticker.NewForce(time.Hour)))
	t.Cleanup(func() { _ = d.Store().Stop() })
	s := d.Store()
	require.NoError(t, s.MarkRunning(lightning.NodeIdentity{NodeID: "node1"}))

	pending := testInvoice("pending", now)
	stale := testInvoice("stale", now.Add(-2*time.Hour))
	require.NoError(t, s.AddInvoice(pending))
	require.NoError(t, s.AddInvoice(stale))

	settled := pending
	settled.Settled = true
	outgoing := testInvoice("outgoing", now)
	outgoing.PayeePublicKey = "node2"

	n.EXPECT().GetChannels(ctx).Return(map[string]lightning.Channel{
		"1": {ChannelID: "1", CapacitySats: 10000, IsOpen: true},
		"2": {ChannelID: "2", CapacitySats: 5000},
	}, nil)
	n.EXPECT().GetClaimableBalance(ctx).Return(money.Money(2500), nil)
	n.EXPECT().ListInvoices(ctx).Return([]lightning.Invoice{settled, testInvoice("unknown", now)}, nil)
	n.EXPECT().ListPayments(ctx).Return([]lightning.Invoice{outgoing}, nil)

	require.NoError(t, d.SyncOnce(ctx))

	channelState := s.Channels()
	require.Len(t, channelState.Channels, 2)
	require.Equal(t, []string{"1"}, channelState.OpenChannelIDs)
	require.Equal(t, money.Money(2500), s.ClaimableBalance())

	received, ok := s.Payment("pending")
	require.True(t, ok)
	require.Equal(t, store.Received, received.Direction)
	sent, ok := s.Payment("outgoing")
	require.True(t, ok)
	require.Equal(t, store.Sent, sent.Direction)

	invoices := s.Invoices()
	require.Len(t, invoices, 1)
	require.Equal(t, "pending", invoices[0].PaymentHash)
	require.True(t, invoices[0].Settled)
}

func Test_SyncOnceKeepsGoing(t *testing.T) {
	ctrl := gomock.NewController(t)
	n := lightning.NewMockNode(ctrl)
	ctx := context.Background()

	d := New(testConfig(), n, database.NewMockRepository(ctrl), WithoutRPC(), WithTicker(ticker.NewForce(time.Hour)))
	t.Cleanup(func() { _ = d.Store().Stop() })
	require.NoError(t, d.Store().MarkRunning(lightning.NodeIdentity{NodeID: "node1"}))

	outgoing := testInvoice("outgoing", time.Now().UTC())
	outgoing.PayeePublicKey = "node2"

	n.EXPECT().GetChannels(ctx).Return(nil, errors.New("channels down"))
	n.EXPECT().ListInvoices(ctx).Return(nil, errors.New("invoices down"))
	n.EXPECT().ListPayments(ctx).Return([]lightning.Invoice{outgoing}, nil)

	err := d.SyncOnce(ctx)
	require.ErrorContains(t, err, "channels down")
	require.ErrorContains(t, err, "invoices down")

	_, ok := d.Store().Payment("outgoing")
	require.True(t, ok)
}

func newSqliteRepository(t *testing.T) *database.Database {
	t.Helper()

	db, closeDb, err := database.NewDatabase("", "", "", 0, filepath.Join(t.TempDir(), "wallet.db"), database.SqliteHost)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, closeDb())
	})
	require.NoError(t, db.MigrateDatabase())

	return db
}

func Test_Persister(t *testing.T) {
	db := newSqliteRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := store.New()
	t.Cleanup(func() { _ = s.Stop() })
	now := time.Now().UTC()

	updates, err := s.Subscribe()
	require.NoError(t, err)
	persister := NewPersister(db, s.Snapshot())
	done := make(chan struct{})
	go func() {
		defer close(done)
		persister.Run(ctx, updates)
	}()

	require.NoError(t, s.AddInvoice(testInvoice("a", now)))
	require.NoError(t, s.AddInvoice(testInvoice("b", now)))
	require.NoError(t, s.PutPayment(store.Payment{PaymentHash: "a", Invoice: testInvoice("a", now), Direction: store.Received}))
	require.True(t, s.RemoveInvoice("b"))

	require.Eventually(t, func() bool {
		invoices, err := db.GetInvoices(ctx)
		if err != nil || len(invoices) != 1 {
			return false
		}
		payments, err := db.GetPayments(ctx)

		return err == nil && len(payments) == 1 && invoices[0].PaymentHash == "a"
	}, 5*time.Second, 10*time.Millisecond)

	payments, err := db.GetPayments(ctx)
	require.NoError(t, err)
	require.Equal(t, models.DirectionReceived, payments[0].Direction)
	require.Equal(t, "coffee", payments[0].Invoice.Description)

	cancel()
	<-done
}

func Test_Start(t *testing.T) {
	ctrl := gomock.NewController(t)
	n := lightning.NewMockNode(ctrl)
	db := newSqliteRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticks := ticker.NewForce(time.Hour)
	now := time.Now().UTC()

	require.NoError(t, db.SaveInvoice(ctx, models.NewInvoice(testInvoice("restored", now))))

	config := testConfig()
	n.EXPECT().StartNode(gomock.Any(), config.NodeConfig()).Return(nil)
	n.EXPECT().IsNodeRunning(gomock.Any()).Return(true)
	n.EXPECT().GetNodeIdentity(gomock.Any()).Return(&lightning.NodeIdentity{NodeID: "node1"}, nil)
	n.EXPECT().ConnectPeers(gomock.Any()).Return(nil)
	n.EXPECT().GetChannels(gomock.Any()).Return(map[string]lightning.Channel{}, nil).MinTimes(2)
	n.EXPECT().GetClaimableBalance(gomock.Any()).Return(money.Money(0), nil).MinTimes(2)
	n.EXPECT().ListInvoices(gomock.Any()).Return(nil, nil).MinTimes(2)
	n.EXPECT().ListPayments(gomock.Any()).Return(nil, nil).MinTimes(2)

	d := New(config, n, db, WithoutRPC(), WithTicker(ticks))
	result := make(chan error, 1)
	go func() {
		result <- d.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return d.Store().Status() == store.Complete
	}, 5*time.Second, 10*time.Millisecond)
	_, ok := d.Store().Invoice("restored")
	require.True(t, ok)

	// The second sync runs on the tick.
	ticks.Force <- now

	require.Eventually(t, func() bool {
		value, found, err := db.GetFlag(ctx, models.FlagLastNodeID)

		return err == nil && found && value == "node1"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, d.Store().AddInvoice(testInvoice("fresh", now)))
	require.Eventually(t, func() bool {
		invoices, err := db.GetInvoices(ctx)

		return err == nil && len(invoices) == 2
	}, 5*time.Second, 10*time.Millisecond)

	// Unbuffered, so the first tick has been taken by the loop once this
	// one is accepted.
	ticks.Force <- now
	cancel()
	require.NoError(t, <-result)
}
