package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/40acres/ettawallet/database/models"
	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// EmbeddedHost makes the daemon run its own postgres instance.
	EmbeddedHost = "embedded"
	// SqliteHost stores everything in a single sqlite file under the data path.
	SqliteHost = "sqlite"
)

var ErrUnsupportedDialect = errors.New("unsupported database dialect")

type Database struct {
	host       string
	username   string
	password   string
	database   string
	port       uint32
	dataPath   string
	connection *embeddedpostgres.EmbeddedPostgres
	orm        *gorm.DB
}

// NewDatabase opens the database described by host: EmbeddedHost starts a
// local postgres under dataPath, SqliteHost opens dataPath as a sqlite file
// and anything else is the address of an external postgres server. The
// returned func closes everything that was opened.
func NewDatabase(username, password, database string, port uint32, dataPath, host string) (*Database, func() error, error) {
	db := &Database{
		host:     host,
		username: username,
		password: password,
		database: database,
		port:     port,
		dataPath: dataPath,
	}

	switch host {
	case SqliteHost:
		orm, err := gorm.Open(sqlite.Open(dataPath), gormConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite database: %w", err)
		}
		db.orm = orm
	case EmbeddedHost:
		db.connection = embeddedpostgres.NewDatabase(
			embeddedpostgres.DefaultConfig().
				Username(username).
				Password(password).
				Database(database).
				Port(port).
				DataPath(dataPath).
				Logger(log.StandardLogger().WriterLevel(log.DebugLevel)),
		)
		if err := db.connection.Start(); err != nil {
			return nil, nil, fmt.Errorf("could not start embedded database: %w", err)
		}
		log.Info("embedded database started")

		fallthrough
	default:
		if err := db.ping(); err != nil {
			_ = db.stopEmbedded()

			return nil, nil, err
		}

		orm, err := gorm.Open(postgres.Open(db.GetConnectionURL()), gormConfig())
		if err != nil {
			_ = db.stopEmbedded()

			return nil, nil, fmt.Errorf("could not connect gorm: %w", err)
		}
		db.orm = orm
	}

	return db, db.close, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}

func (d *Database) ping() error {
	conn, err := sql.Open("postgres", d.GetConnectionURL())
	if err != nil {
		return fmt.Errorf("could not open database connection: %w", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		return fmt.Errorf("could not reach database: %w", err)
	}

	return nil
}

// GetConnectionURL returns the postgres URL for the configured host.
func (d *Database) GetConnectionURL() string {
	host := d.host
	if host == EmbeddedHost {
		host = "localhost"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.username, d.password),
		Host:     host + ":" + strconv.FormatUint(uint64(d.port), 10),
		Path:     "/" + d.database,
		RawQuery: "sslmode=disable",
	}

	return u.String()
}

func (d *Database) ORM() *gorm.DB {
	return d.orm
}

// Dialect returns the gorm dialect in use, "postgres" or "sqlite".
func (d *Database) Dialect() string {
	return d.orm.Dialector.Name()
}

func (d *Database) close() error {
	var errs []error
	if d.orm != nil {
		sqlDB, err := d.orm.DB()
		if err == nil {
			errs = append(errs, sqlDB.Close())
		} else {
			errs = append(errs, err)
		}
	}
	errs = append(errs, d.stopEmbedded())

	return errors.Join(errs...)
}

func (d *Database) stopEmbedded() error {
	if d.connection == nil {
		return nil
	}
	if err := d.connection.Stop(); err != nil {
		return fmt.Errorf("could not stop embedded database: %w", err)
	}
	d.connection = nil

	return nil
}

// MigrateDatabase creates or updates every table the wallet uses.
func (d *Database) MigrateDatabase() error {
	switch d.Dialect() {
	case "postgres":
		if err := d.orm.Exec(models.CreatePaymentDirectionEnumSQL()).Error; err != nil {
			return fmt.Errorf("could not create payment direction enum: %w", err)
		}
	case "sqlite":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDialect, d.Dialect())
	}

	if err := d.orm.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("could not migrate models: %w", err)
	}
	log.WithField("dialect", d.Dialect()).Info("database migrated")

	return nil
}

// Reset drops every table and migrates again.
func (d *Database) Reset() error {
	if err := d.orm.Migrator().DropTable(models.All()...); err != nil {
		return fmt.Errorf("could not drop tables: %w", err)
	}
	if d.Dialect() == "postgres" {
		if err := d.orm.Exec(models.DropPaymentDirectionEnumSQL()).Error; err != nil {
			return fmt.Errorf("could not drop payment direction enum: %w", err)
		}
	}

	return d.MigrateDatabase()
}
