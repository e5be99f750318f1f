package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/40acres/ettawallet/daemon"
	"github.com/40acres/ettawallet/database"
	"github.com/40acres/ettawallet/lightning"
	"github.com/40acres/ettawallet/lightning/lnd"
	"github.com/40acres/ettawallet/rpc"
	"github.com/40acres/ettawallet/utils"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	_ "github.com/40acres/ettawallet/logging"
	_ "github.com/lib/pq"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info("Received signal, shutting down")
		cancel()
	}()

	app := &cli.Command{
		Name:  "ettawallet",
		Usage: "A CLI for the ettawallet daemon",
		Flags: []cli.Flag{
			&grpcPort,
			&testnet,
			&regtest,
		},
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start the ettawalletd daemon",
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "lnd-host",
						Usage: "LND gRPC endpoint",
						Value: "localhost:10009",
					},
					&cli.StringFlag{
						Name:  "lnd-macaroon",
						Usage: "Path to the LND admin macaroon, {Network} is replaced by the network name",
						Value: "/root/.lnd/data/chain/bitcoin/{Network}/admin.macaroon",
					},
					&cli.StringFlag{
						Name:  "lnd-tls-cert",
						Usage: "Path to the LND TLS certificate",
						Value: "/root/.lnd/tls.cert",
					},
					&cli.StringFlag{
						Name:  "wallet-password",
						Usage: "Password used to unlock the node wallet",
					},
					&cli.StringSliceFlag{
						Name:  "peer",
						Usage: "Peer to connect to once the node is ready, as pubkey@host:port",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Readiness polls before giving up",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "retry-interval-ms",
						Usage: "Milliseconds between readiness polls",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  "sync-interval",
						Usage: "Seconds between syncs with the node",
						Value: 30,
					},
				),
				Action: func(ctx context.Context, c *cli.Command) error {
					port, err := utils.SafeInt64ToUint32(c.Int("grpc-port"))
					if err != nil {
						return err
					}
					network := networkFromFlags(c)

					config, err := daemon.NewConfigFromFlags(
						network,
						port,
						c.String("wallet-password"),
						c.StringSlice("peer"),
						int(c.Int("max-retries")),
						int(c.Int("retry-interval-ms")),
						int(c.Int("sync-interval")),
					)
					if err != nil {
						return err
					}
					if err := config.Validate(); err != nil {
						return err
					}

					db, closeDb, err := StartDatabase(c)
					if err != nil {
						return err
					}
					defer func() {
						if err := closeDb(); err != nil {
							log.Errorf("❌ Could not close database: %v", err)
						}
					}()
					if err := migrateIfLocal(c, db); err != nil {
						return err
					}

					node, err := lnd.NewClient(ctx,
						lnd.WithLndEndpoint(c.String("lnd-host")),
						lnd.WithMacaroonFilePath(c.String("lnd-macaroon")),
						lnd.WithTLSCertFilePath(c.String("lnd-tls-cert")),
						lnd.WithNetwork(network),
					)
					if err != nil {
						return fmt.Errorf("❌ Could not create LND client: %w", err)
					}
					defer node.CloseConnection()

					return daemon.New(config, node, db).Start(ctx)
				},
			},
			{
				Name:  "invoice",
				Usage: "Invoice operations",
				Flags: []cli.Flag{hostFlag()},
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "Create an invoice",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "amount",
								Usage: "Amount in sats",
							},
							&cli.StringFlag{
								Name:  "amount-btc",
								Usage: "Amount in BTC, e.g. 0.00021",
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Invoice description",
							},
							&cli.IntFlag{
								Name:  "expiry",
								Usage: "Expiry in seconds",
								Value: 3600,
							},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							if c.Int("amount") < 0 {
								return fmt.Errorf("amount must not be negative")
							}
							if c.IsSet("amount") == c.IsSet("amount-btc") {
								return fmt.Errorf("exactly one of --amount or --amount-btc is required")
							}

							return callDaemon(ctx, c, func(client rpc.NodeServiceClient) (*structpb.Struct, error) {
								req, err := rpc.ToStruct(rpc.CreateInvoiceRequest{
									AmountSats:    uint64(c.Int("amount")),
									AmountBtc:     c.String("amount-btc"),
									Description:   c.String("description"),
									ExpirySeconds: c.Int("expiry"),
								})
								if err != nil {
									return nil, err
								}

								return client.CreateInvoice(ctx, req)
							})
						},
					},
					{
						Name:  "cancel",
						Usage: "Drop an invoice from the wallet",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "hash",
								Usage:    "Payment hash of the invoice",
								Required: true,
							},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							return callDaemon(ctx, c, func(client rpc.NodeServiceClient) (*structpb.Struct, error) {
								req, err := rpc.ToStruct(rpc.CancelInvoiceRequest{PaymentHash: c.String("hash")})
								if err != nil {
									return nil, err
								}

								return client.CancelInvoice(ctx, req)
							})
						},
					},
					{
						Name:  "prune",
						Usage: "Remove expired invoices",
						Action: func(ctx context.Context, c *cli.Command) error {
							return callDaemon(ctx, c, func(client rpc.NodeServiceClient) (*structpb.Struct, error) {
								return client.PruneExpired(ctx, &structpb.Struct{})
							})
						},
					},
				},
			},
			{
				Name:  "payment",
				Usage: "Payment operations",
				Flags: []cli.Flag{hostFlag()},
				Commands: []*cli.Command{
					{
						Name:  "record",
						Usage: "Classify and record a paid invoice",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "hash",
								Usage: "Payment hash of an invoice the wallet holds",
							},
							&cli.StringFlag{
								Name:  "request",
								Usage: "BOLT11 payment request",
							},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							return callDaemon(ctx, c, func(client rpc.NodeServiceClient) (*structpb.Struct, error) {
								req, err := rpc.ToStruct(rpc.RecordPaymentRequest{
									PaymentHash:    c.String("hash"),
									PaymentRequest: c.String("request"),
								})
								if err != nil {
									return nil, err
								}

								return client.RecordPayment(ctx, req)
							})
						},
					},
				},
			},
			{
				Name:  "node",
				Usage: "Node session operations",
				Flags: []cli.Flag{hostFlag()},
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "Ask the daemon to start the node",
						Action: func(ctx context.Context, c *cli.Command) error {
							return callDaemon(ctx, c, func(client rpc.NodeServiceClient) (*structpb.Struct, error) {
								return client.EnsureStarted(ctx, &emptypb.Empty{})
							})
						},
					},
					{
						Name:  "reset",
						Usage: "End the node session so the next start begins from scratch",
						Action: func(ctx context.Context, c *cli.Command) error {
							return callDaemon(ctx, c, func(client rpc.NodeServiceClient) (*structpb.Struct, error) {
								return client.ResetNode(ctx, &emptypb.Empty{})
							})
						},
					},
				},
			},
			{
				Name:  "snapshot",
				Usage: "Print the daemon state",
				Flags: []cli.Flag{hostFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return callDaemon(ctx, c, func(client rpc.NodeServiceClient) (*structpb.Struct, error) {
						return client.GetSnapshot(ctx, &emptypb.Empty{})
					})
				},
			},
			{
				Name:  "database",
				Usage: "Database operations",
				Flags: databaseFlags(),
				Commands: []*cli.Command{
					{
						Name:  "migrate",
						Usage: "Migrate the database",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							db, closeDb, err := StartDatabase(cmd)
							if err != nil {
								return err
							}
							defer func() {
								if err := closeDb(); err != nil {
									log.Errorf("❌ Could not close database: %v", err)
								}
							}()

							return db.MigrateDatabase()
						},
					},
					{
						Name:  "reset",
						Usage: "Reset the database",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							db, closeDb, err := StartDatabase(cmd)
							if err != nil {
								return err
							}
							defer func() {
								if err := closeDb(); err != nil {
									log.Errorf("❌ Could not close database: %v", err)
								}
							}()

							return db.Reset()
						},
					},
				},
			},
		},
	}

	app_err := app.Run(ctx, os.Args)
	if app_err != nil {
		log.Fatal(app_err)
	}
}

var regtest = cli.BoolFlag{
	Name:  "regtest",
	Usage: "Use regtest network",
}
var testnet = cli.BoolFlag{
	Name:  "testnet",
	Usage: "Use testnet network",
}

var grpcPort = cli.IntFlag{
	Name:  "grpc-port",
	Usage: "Grpc port for client to daemon communication",
	Value: 50051,
}

func hostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "host",
		Usage: "Daemon host",
		Value: "localhost",
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "db-host",
			Usage: "Database host, \"embedded\" or \"sqlite\" for a local database",
			Value: database.EmbeddedHost,
		},
		&cli.StringFlag{
			Name:  "db-user",
			Usage: "Database username",
			Value: "myuser",
		},
		&cli.StringFlag{
			Name:  "db-password",
			Usage: "Database password",
			Value: "mypassword",
		},
		&cli.StringFlag{
			Name:  "db-name",
			Usage: "Database name",
			Value: "postgres",
		},
		&cli.IntFlag{
			Name:  "db-port",
			Usage: "Database port",
			Value: 5433,
		},
		&cli.StringFlag{
			Name:  "db-data-path",
			Usage: "Database path, the sqlite file for the sqlite host",
			Value: "./.data",
		},
	}
}

func networkFromFlags(c *cli.Command) lightning.Network {
	switch {
	case c.Bool("regtest"):
		return lightning.Regtest
	case c.Bool("testnet"):
		return lightning.Testnet
	default:
		return lightning.Mainnet
	}
}

func StartDatabase(cmd *cli.Command) (*database.Database, func() error, error) {
	port, err := utils.SafeInt64ToUint32(cmd.Int("db-port"))
	if err != nil {
		return nil, nil, err
	}

	db, closeDb, err := database.NewDatabase(
		cmd.String("db-user"),
		cmd.String("db-password"),
		cmd.String("db-name"),
		port,
		cmd.String("db-data-path"),
		cmd.String("db-host"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("❌ Could not connect to database: %w", err)
	}

	return db, closeDb, nil
}

// migrateIfLocal migrates databases the daemon owns. External databases are
// migrated with atlas.
func migrateIfLocal(cmd *cli.Command, db *database.Database) error {
	switch cmd.String("db-host") {
	case database.EmbeddedHost, database.SqliteHost:
		return db.MigrateDatabase()
	default:
		log.Info("🔍 Skipping database migration")

		return nil
	}
}

func callDaemon(ctx context.Context, c *cli.Command, call func(rpc.NodeServiceClient) (*structpb.Struct, error)) error {
	port, err := utils.SafeInt64ToUint32(c.Int("grpc-port"))
	if err != nil {
		return err
	}

	client, closeConn, err := rpc.NewRPCClient(c.String("host"), port)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeConn(); err != nil {
			log.WithError(err).Debug("could not close connection")
		}
	}()

	res, err := call(client)
	if err != nil {
		return err
	}

	rendered, err := rpc.MarshalIndent(res)
	if err != nil {
		return err
	}
	fmt.Println(rendered)

	return nil
}
