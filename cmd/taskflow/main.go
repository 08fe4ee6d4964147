package main

import (
	"fmt"
	"os"

	app "github.com/krr2020/taskflow-ai-sub003/internal"
	"github.com/krr2020/taskflow-ai-sub003/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	taskflow, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing taskflow: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = taskflow.Close() }()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
