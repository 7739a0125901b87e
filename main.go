// ABOUTME: Entry point for the nudge CLI, chat proxy and MCP server
// ABOUTME: Hands off to the cobra command tree in package cli
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/nudge/cli"
)

const version = "0.1.0"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
