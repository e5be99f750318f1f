package rpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/40acres/ettawallet/store"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

type Lifecycle interface {
	EnsureStarted(ctx context.Context, cfg lightning.NodeConfig) error
	AwaitReady(ctx context.Context, maxRetries int, interval time.Duration) error
}

type InvoiceLedger interface {
	CreateInvoice(ctx context.Context, amount money.Money, description string, expiry time.Duration) (lightning.Invoice, error)
	PruneExpired(now time.Time) []lightning.Invoice
	PruneExpiredNow() []lightning.Invoice
	FindByHash(hash string) (lightning.Invoice, bool)
	Cancel(hash string) bool
}

type PaymentRecorder interface {
	RecordPayment(invoice lightning.Invoice, localNodeID string) (store.Payment, error)
}

type Server struct {
	port       uint32
	store      *store.Store
	lifecycle  Lifecycle
	ledger     InvoiceLedger
	payments   PaymentRecorder
	nodeConfig lightning.NodeConfig

	maxRetries    int
	retryInterval time.Duration

	grpcServer *grpc.Server
}

var _ NodeServiceServer = (*Server)(nil)

type ServerOption func(*Server)

// WithRetries sets the polling used by AwaitReady calls that do not pick their own.
func WithRetries(maxRetries int, interval time.Duration) ServerOption {
	return func(s *Server) {
		s.maxRetries = maxRetries
		s.retryInterval = interval
	}
}

func NewRPCServer(port uint32, s *store.Store, lifecycle Lifecycle, ledger InvoiceLedger, payments PaymentRecorder, nodeConfig lightning.NodeConfig, opts ...ServerOption) *Server {
	svr := &Server{
		port:          port,
		store:         s,
		lifecycle:     lifecycle,
		ledger:        ledger,
		payments:      payments,
		nodeConfig:    nodeConfig,
		maxRetries:    10,
		retryInterval: time.Second,
	}
	for _, opt := range opts {
		opt(svr)
	}
	svr.grpcServer = grpc.NewServer()
	RegisterNodeServiceServer(svr.grpcServer, svr)

	return svr
}

func (server *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", server.port))
	if err != nil {
		return fmt.Errorf("failed to listen to port: %w", err)
	}

	return server.Serve(listener)
}

func (server *Server) Serve(listener net.Listener) error {
	log.WithField("address", listener.Addr().String()).Info("rpc server listening")
	if err := server.grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("failed to initialize grpc server: %w", err)
	}

	return nil
}

// Stop closes open streams and waits for pending calls.
func (server *Server) Stop() {
	server.grpcServer.GracefulStop()
}
