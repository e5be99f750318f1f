package daemon

import (
	"fmt"
	"time"

	"github.com/40acres/ettawallet/lightning"
)

// ErrInvalidConfig is returned when the daemon configuration is invalid
func ErrInvalidConfig(message string) error {
	return fmt.Errorf("invalid daemon config: %s", message)
}

// Config holds everything the daemon needs besides its collaborators
type Config struct {
	Network             lightning.Network
	GRPCPort            uint32
	WalletPassword      string
	Peers               []lightning.PeerAddress
	MaxRetries          int
	RetryIntervalMs     int
	SyncIntervalSeconds int
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Network:             lightning.Mainnet,
		GRPCPort:            50051,
		MaxRetries:          10,
		RetryIntervalMs:     1000,
		SyncIntervalSeconds: 30,
	}
}

// NewConfigFromFlags creates a new Config from CLI flags. Peers are given as
// pubkey@host:port strings.
func NewConfigFromFlags(
	network lightning.Network,
	grpcPort uint32,
	walletPassword string,
	peers []string,
	maxRetries int,
	retryIntervalMs int,
	syncIntervalSeconds int,
) (*Config, error) {
	addresses := make([]lightning.PeerAddress, 0, len(peers))
	for _, peer := range peers {
		address, err := lightning.ParsePeerAddress(peer)
		if err != nil {
			return nil, ErrInvalidConfig(err.Error())
		}
		addresses = append(addresses, address)
	}

	return &Config{
		Network:             network,
		GRPCPort:            grpcPort,
		WalletPassword:      walletPassword,
		Peers:               addresses,
		MaxRetries:          maxRetries,
		RetryIntervalMs:     retryIntervalMs,
		SyncIntervalSeconds: syncIntervalSeconds,
	}, nil
}

// GetRetryInterval returns the readiness poll interval as a time.Duration
func (c *Config) GetRetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMs) * time.Millisecond
}

// GetSyncInterval returns the sync loop interval as a time.Duration
func (c *Config) GetSyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSeconds) * time.Second
}

// NodeConfig is the part of the configuration handed to the node on start
func (c *Config) NodeConfig() lightning.NodeConfig {
	return lightning.NodeConfig{
		Network:        c.Network,
		WalletPassword: c.WalletPassword,
		Peers:          c.Peers,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if lightning.ToChainCfgNetwork(c.Network) == nil {
		return ErrInvalidConfig(fmt.Sprintf("unknown network %q", c.Network))
	}
	if c.GRPCPort == 0 || c.GRPCPort > 65535 {
		return ErrInvalidConfig("grpc port must be between 1 and 65535")
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidConfig("max retries must be positive")
	}
	if c.RetryIntervalMs <= 0 {
		return ErrInvalidConfig("retry interval must be positive")
	}
	if c.SyncIntervalSeconds <= 0 {
		return ErrInvalidConfig("sync interval must be positive")
	}

	return nil
}
