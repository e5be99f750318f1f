// Command migrations prints the wallet schema for atlas:
//
//	atlas migrate diff --env gorm
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"
	"github.com/40acres/ettawallet/database/models"
)

func main() {
	dialect := "postgres"
	if len(os.Args) > 1 {
		dialect = os.Args[1]
	}

	stmts, err := gormschema.New(dialect).Load(models.All()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}

	if dialect == "postgres" {
		stmts = models.CreatePaymentDirectionEnumSQL() + "\n" + stmts
	}

	if _, err := io.WriteString(os.Stdout, stmts); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write to stdout: %v\n", err)
		os.Exit(1)
	}
}
