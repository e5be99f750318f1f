package models

import (
	"database/sql/driver"
	"fmt"
)

type PaymentDirection string

const (
	DirectionSent     PaymentDirection = "SENT"
	DirectionReceived PaymentDirection = "RECEIVED"
)

func (d PaymentDirection) IsValid() bool {
	return d == DirectionSent || d == DirectionReceived
}

func (d PaymentDirection) String() string {
	return string(d)
}

func (d *PaymentDirection) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("failed to scan PaymentDirection: expected string, got %T", value)
	}

	direction := PaymentDirection(str)
	if !direction.IsValid() {
		return fmt.Errorf("invalid payment direction %q", str)
	}
	*d = direction

	return nil
}

func (d PaymentDirection) Value() (driver.Value, error) {
	return string(d), nil
}

// CreatePaymentDirectionEnumSQL creates the postgres enum backing the
// payments.direction column. It is a no-op when the type already exists.
func CreatePaymentDirectionEnumSQL() string {
	return `DO $$ BEGIN
		CREATE TYPE "public"."payment_direction" AS ENUM ('SENT', 'RECEIVED');
	EXCEPTION
		WHEN duplicate_object THEN null;
	END $$;`
}

func DropPaymentDirectionEnumSQL() string {
	return `DROP TYPE IF EXISTS "public"."payment_direction";`
}
