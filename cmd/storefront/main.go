package main

import (
	"os"

	"github.com/twillco/storefront/internal/cli"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}
