package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atlanticdynamic/deployhq-mcp/internal/config"
)

// Version is set during build using ldflags
var Version = "dev"

func main() {
	a := &app{
		args:      config.NormalizeArgs(os.Args),
		lookupEnv: os.LookupEnv,
		stdout:    os.Stdout,
	}

	if err := a.command().Run(context.Background(), a.args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
