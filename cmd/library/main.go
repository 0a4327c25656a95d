// Command library is the command line interface of the library circulation system.
//
// Without arguments it prints the help. "library menu" starts the interactive text menu,
// "library serve" the HTTP API. Logs are written as JSON to the configured log file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		if !isReported(err) {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
		}
		stop()
		os.Exit(1)
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
