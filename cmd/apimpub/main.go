// Package main is the entry point for apimpub.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opmodel/apimpub/internal/cmd"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		code := oerrors.ExitCodeFromError(err)
		var exitErr *oerrors.ExitError
		// Only print if the command layer hasn't already printed it
		if !errors.As(err, &exitErr) || !exitErr.Printed {
			fmt.Fprintln(os.Stderr, err)
		}
		output.Debug("exiting", "code", code, "reason", oerrors.ExitCodeName(code))
		os.Exit(code)
	}
}
