// cmd/minidb/main.go
//
// minidb CLI - interactive shell for the in-memory SQL engine.
//
// Usage:
//
//	minidb [-schema schema.yaml]
//
// The optional schema file bootstraps tables before the shell starts.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Bernard065/mini-rdbms/pkg/cli"
	"github.com/Bernard065/mini-rdbms/pkg/minidb"
)

func main() {
	schemaFile := flag.String("schema", "", "YAML or JSON schema file to bootstrap tables from")
	flag.Parse()

	session, err := minidb.NewSessionWithOptions(minidb.Options{SchemaFile: *schemaFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading schema: %v\n", err)
		os.Exit(1)
	}

	repl := cli.NewREPL(session, os.Stdout, os.Stderr)
	repl.Run()
}
