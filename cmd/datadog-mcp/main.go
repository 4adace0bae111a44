package main

import (
	"os"

	"github.com/cobalt-robotics/datadog-mcp/cmd/datadog-mcp/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
