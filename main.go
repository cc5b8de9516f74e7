package main

import (
	"context"
	"os"

	"github.com/lehigh-university-libraries/stylist/cmd"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cmd.Execute(context.Background(), version, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
