package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/fatih/color"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
	}
	os.Exit(code)
}

// run executes the command tree and maps failures to exit codes: 2 for
// configuration problems, 1 for everything else.
func run() (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0, nil
	}
	var domainErr *models.DomainError
	if errors.As(err, &domainErr) && domainErr.Type == models.ErrorTypeConfiguration {
		return 2, err
	}
	return 1, err
}
