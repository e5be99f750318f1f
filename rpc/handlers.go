package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/40acres/ettawallet/invoices"
	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/money"
	"github.com/40acres/ettawallet/node"
	"github.com/40acres/ettawallet/store"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type AwaitReadyRequest struct {
	MaxRetries int   `json:"max_retries,omitempty"`
	IntervalMs int64 `json:"interval_ms,omitempty"`
}

// CreateInvoiceRequest takes the amount either in sats or as a decimal BTC
// string, never both.
type CreateInvoiceRequest struct {
	AmountSats    uint64 `json:"amount_sats"`
	AmountBtc     string `json:"amount_btc,omitempty"`
	Description   string `json:"description"`
	ExpirySeconds int64  `json:"expiry_seconds"`
}

type PruneExpiredRequest struct {
	// Now is a unix timestamp in seconds, the server clock is used when unset.
	Now *int64 `json:"now,omitempty"`
}

type PruneExpiredResponse struct {
	Removed []lightning.Invoice `json:"removed"`
}

// RecordPaymentRequest names the invoice either by a hash the ledger holds
// or by its payment request.
type RecordPaymentRequest struct {
	PaymentHash    string `json:"payment_hash,omitempty"`
	PaymentRequest string `json:"payment_request,omitempty"`
	// LocalNodeID defaults to the identity of the running node.
	LocalNodeID string `json:"local_node_id,omitempty"`
}

type CancelInvoiceRequest struct {
	PaymentHash string `json:"payment_hash"`
}

type CancelInvoiceResponse struct {
	Cancelled bool `json:"cancelled"`
}

func (in CreateInvoiceRequest) amount() (money.Money, error) {
	if in.AmountBtc == "" {
		return money.Money(in.AmountSats), nil
	}
	if in.AmountSats != 0 {
		return 0, errors.New("amount_sats and amount_btc are mutually exclusive")
	}

	return money.ParseBtc(in.AmountBtc)
}

func (server *Server) EnsureStarted(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := server.lifecycle.EnsureStarted(ctx, server.nodeConfig); err != nil {
		return nil, toStatus(err)
	}

	return ToStruct(server.store.Snapshot())
}

func (server *Server) AwaitReady(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in AwaitReadyRequest
	if err := FromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	maxRetries := server.maxRetries
	if in.MaxRetries > 0 {
		maxRetries = in.MaxRetries
	}
	interval := server.retryInterval
	if in.IntervalMs > 0 {
		interval = time.Duration(in.IntervalMs) * time.Millisecond
	}

	if err := server.lifecycle.AwaitReady(ctx, maxRetries, interval); err != nil {
		return nil, toStatus(err)
	}

	return ToStruct(server.store.Snapshot())
}

func (server *Server) CreateInvoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in CreateInvoiceRequest
	if err := FromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.ExpirySeconds <= 0 {
		return nil, status.Error(codes.InvalidArgument, "expiry_seconds must be positive")
	}
	amount, err := in.amount()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	log.WithFields(log.Fields{
		"amount_sats": amount.Sats(),
		"amount_btc":  amount.ToBtc().String(),
		"expiry":      in.ExpirySeconds,
	}).Info("received CreateInvoice request")

	invoice, err := server.ledger.CreateInvoice(ctx, amount, in.Description, time.Duration(in.ExpirySeconds)*time.Second)
	if err != nil {
		return nil, toStatus(err)
	}

	return ToStruct(invoice)
}

func (server *Server) PruneExpired(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in PruneExpiredRequest
	if err := FromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var removed []lightning.Invoice
	if in.Now != nil {
		removed = server.ledger.PruneExpired(time.Unix(*in.Now, 0))
	} else {
		removed = server.ledger.PruneExpiredNow()
	}
	if removed == nil {
		removed = []lightning.Invoice{}
	}

	return ToStruct(PruneExpiredResponse{Removed: removed})
}

func (server *Server) RecordPayment(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in RecordPaymentRequest
	if err := FromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var invoice lightning.Invoice
	switch {
	case in.PaymentHash != "":
		found, ok := server.ledger.FindByHash(in.PaymentHash)
		if !ok {
			return nil, status.Errorf(codes.NotFound, "invoice %s not found", in.PaymentHash)
		}
		invoice = found
	case in.PaymentRequest != "":
		decoded, err := lightning.DecodeInvoice(in.PaymentRequest, server.nodeConfig.Network)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		invoice = *decoded
	default:
		return nil, status.Error(codes.InvalidArgument, "payment_hash or payment_request is required")
	}

	localNodeID := in.LocalNodeID
	if localNodeID == "" {
		localNodeID = server.store.LocalNodeID()
	}

	payment, err := server.payments.RecordPayment(invoice, localNodeID)
	if err != nil {
		return nil, toStatus(err)
	}

	return ToStruct(payment)
}

// CancelInvoice drops an invoice from the wallet. The node keeps its record.
func (server *Server) CancelInvoice(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in CancelInvoiceRequest
	if err := FromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.PaymentHash == "" {
		return nil, status.Error(codes.InvalidArgument, "payment_hash is required")
	}

	if !server.ledger.Cancel(in.PaymentHash) {
		return nil, status.Errorf(codes.NotFound, "invoice %s not found", in.PaymentHash)
	}
	log.WithField("payment_hash", in.PaymentHash).Info("invoice cancelled")

	return ToStruct(CancelInvoiceResponse{Cancelled: true})
}

// ResetNode ends the node session. The next EnsureStarted starts it again.
func (server *Server) ResetNode(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	server.store.ResetNode()
	log.Info("node session reset")

	return ToStruct(server.store.Snapshot())
}

func (server *Server) GetSnapshot(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return ToStruct(server.store.Snapshot())
}

// SubscribeState sends the current snapshot, then one snapshot per store update.
func (server *Server) SubscribeState(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	client, err := server.store.Subscribe()
	if err != nil {
		return status.Error(codes.Unavailable, err.Error())
	}
	defer client.Cancel()

	send := func(snapshot store.Snapshot) error {
		msg, err := ToStruct(snapshot)
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}

		return stream.Send(msg)
	}

	if err := send(server.store.Snapshot()); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case u := <-client.Updates():
			update, ok := u.(store.Update)
			if !ok {
				continue
			}
			if err := send(update.Snapshot); err != nil {
				return err
			}
		case <-client.Quit():
			return status.Error(codes.Unavailable, "store is shutting down")
		case <-ctx.Done():
			return nil
		}
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, node.ErrNodeStart), errors.Is(err, node.ErrNodeNotReady):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, store.ErrMissingIdentity):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, store.ErrMissingPaymentHash):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, invoices.ErrInvoiceCreation):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
