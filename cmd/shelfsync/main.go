// Command shelfsync synchronises a local e-book library with its
// storefront and maintains the canonical merged snapshot.
package main

import (
	"os"

	"github.com/shelfsync/shelfsync-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
