// Command estimatectl runs operator tasks against the estimates database:
// migrations, catalog import/export, re-rendering and monthly reports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
