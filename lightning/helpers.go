package lightning

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/40acres/ettawallet/money"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
)

var ErrInvalidPeerAddress = errors.New("invalid peer address")

// ParsePubKey parses a hex-encoded public key (bitcon secp256k1) string into a btcec public key object
func ParsePubKey(pubKeyStr string) (*btcec.PublicKey, error) {
	pubKeyBytes, err := hex.DecodeString(pubKeyStr)
	if err != nil {
		return nil, err
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, err
	}

	return pubKey, nil
}

// ParsePeerAddress parses a pubkey@host:port string.
func ParsePeerAddress(s string) (PeerAddress, error) {
	pubKey, host, found := strings.Cut(strings.TrimSpace(s), "@")
	if !found || pubKey == "" || host == "" {
		return PeerAddress{}, fmt.Errorf("%w: %q must be pubkey@host:port", ErrInvalidPeerAddress, s)
	}

	if _, err := ParsePubKey(pubKey); err != nil {
		return PeerAddress{}, fmt.Errorf("%w: %w", ErrInvalidPeerAddress, err)
	}

	return PeerAddress{PubKey: pubKey, Host: host}, nil
}

type Network string

const Mainnet Network = "mainnet"
const Regtest Network = "regtest"
const Testnet Network = "testnet"

func ToChainCfgNetwork(network Network) *chaincfg.Params {
	switch network {
	case Mainnet:
		return &chaincfg.MainNetParams
	case Regtest:
		return &chaincfg.RegressionNetParams
	case Testnet:
		return &chaincfg.TestNet3Params
	default:
		return nil
	}
}

// DecodeInvoice decodes a BOLT11 payment request into an Invoice. The payee is
// recovered from the invoice signature when no explicit node id is present.
func DecodeInvoice(paymentRequest string, network Network) (*Invoice, error) {
	params := ToChainCfgNetwork(network)
	if params == nil {
		return nil, fmt.Errorf("unknown network %q", network)
	}

	decoded, err := zpay32.Decode(paymentRequest, params)
	if err != nil {
		return nil, fmt.Errorf("could not decode invoice: %w", err)
	}
	if decoded.PaymentHash == nil {
		return nil, errors.New("invoice has no payment hash")
	}

	invoice := &Invoice{
		PaymentHash:    hex.EncodeToString(decoded.PaymentHash[:]),
		CreatedAt:      decoded.Timestamp,
		ExpirySeconds:  int64(decoded.Expiry().Seconds()),
		PaymentRequest: paymentRequest,
	}
	if decoded.Destination != nil {
		invoice.PayeePublicKey = hex.EncodeToString(decoded.Destination.SerializeCompressed())
	}
	if decoded.MilliSat != nil {
		amount, err := money.NewFromSats(int64(decoded.MilliSat.ToSatoshis()))
		if err != nil {
			return nil, err
		}
		invoice.AmountSats = amount
	}
	if decoded.Description != nil {
		invoice.Description = *decoded.Description
	}

	return invoice, nil
}
