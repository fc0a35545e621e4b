// Command dashboardctl is the operator tool for the queue dashboard: it hashes
// the operator password, mints access tokens and prints tables from a
// snapshot file.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
