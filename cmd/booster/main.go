package main

import (
	_ "embed"
	"strings"

	"github.com/AsifaBeedi/jewel-site-booster/internal/cli"
	"github.com/AsifaBeedi/jewel-site-booster/internal/logging"
)

//go:embed VERSION
var versionFile string

var executeCLI = cli.Execute

func run() error {
	return executeCLI(strings.TrimSpace(versionFile))
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("booster execution failed", "error", err)
	}
}
