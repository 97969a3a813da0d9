// Command rewardctl operates a bbolt-backed reward ledger: it registers
// assets, sets category weights, reports balance changes, and runs the
// daily distribution.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
