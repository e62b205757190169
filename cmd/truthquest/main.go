package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/truthquest/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = ""

func main() {
	if version != "" {
		cli.Version = version
	}
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
