package main

import (
	"fmt"
	"os"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/adapters/driving/cli"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
