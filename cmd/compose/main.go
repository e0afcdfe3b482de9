package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	err = container.Invoke(func(
		logger *zap.Logger,
		generation *core.GenerationService,
		delivery *core.DeliveryService,
	) error {
		defer logger.Sync()

		input, err := openInput(flags)
		if err != nil {
			return err
		}
		defer input.Close()

		return compose(context.Background(), flags, input, os.Stdout, generation, delivery)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openInput returns the prompt source: the -prompt flag, the -file flag or stdin
func openInput(flags *di.CLIFlags) (io.ReadCloser, error) {
	switch {
	case flags.Prompt != "":
		return io.NopCloser(strings.NewReader(flags.Prompt)), nil
	case flags.InputFile != "":
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		return file, nil
	default:
		return io.NopCloser(os.Stdin), nil
	}
}

// compose generates a draft, prints it, and sends it when recipients were given
func compose(
	ctx context.Context,
	flags *di.CLIFlags,
	input io.Reader,
	out io.Writer,
	generation *core.GenerationService,
	delivery *core.DeliveryService,
) error {
	if flags.To != "" {
		// Fail before spending a generation call on a bad recipient list
		if _, err := core.ParseRecipients(flags.To); err != nil {
			return err
		}
	}

	prompt, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read prompt: %w", err)
	}

	draft, err := generation.Generate(ctx, string(prompt))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n=== Draft ===\n")
	fmt.Fprintf(out, "Subject: %s\n\n", draft.Subject)
	fmt.Fprintf(out, "%s\n", draft.Body)
	if draft.Degraded.Any() {
		fmt.Fprintf(out, "\n(note: the model response did not follow the expected format)\n")
	}

	if flags.To == "" {
		return nil
	}

	receipt, err := delivery.Send(ctx, core.SendRequest{
		Recipients: flags.To,
		Subject:    draft.Subject,
		Body:       draft.Body,
	})
	if err != nil {
		var derr *core.DeliveryError
		if errors.As(err, &derr) && len(derr.Addresses) > 0 {
			return fmt.Errorf("%w (rejected: %s)", err, strings.Join(derr.Addresses, ", "))
		}
		return err
	}

	fmt.Fprintf(out, "\n=== Sent ===\n")
	fmt.Fprintf(out, "Message ID: %s\n", receipt.MessageID)
	fmt.Fprintf(out, "Recipients: %s\n", strings.Join(receipt.Recipients, ", "))
	return nil
}
