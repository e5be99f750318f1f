package rpc

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func NewConnection(host string, port uint32) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(
		fmt.Sprintf("%s:%d", host, port),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("did not connect: %w", err)
	}

	return conn, nil
}

// NewRPCClient returns a client for the daemon and a func that closes its connection.
func NewRPCClient(host string, port uint32) (NodeServiceClient, func() error, error) {
	conn, err := NewConnection(host, port)
	if err != nil {
		return nil, nil, err
	}

	return NewNodeServiceClient(conn), conn.Close, nil
}
