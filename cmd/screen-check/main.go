package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mikey/mail-screen/internal/core"
	"github.com/mikey/mail-screen/internal/di"
	"github.com/mikey/mail-screen/internal/utils"
	"go.uber.org/zap"
)

// Process exit codes
const (
	exitClean   = 0
	exitFlagged = 1
	exitError   = 2
)

func main() {
	flags, err := di.ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(exitError)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(exitError)
	}

	code := exitError
	if err := container.Invoke(func(
		logger *zap.Logger,
		flags *di.CLIFlags,
		classifier core.Classifier,
		textProcessor *utils.TextProcessor,
	) error {
		defer logger.Sync()

		var err error
		code, err = check(logger, flags, classifier, textProcessor)
		return err
	}); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(code)
}

// check classifies the input once and prints the verdict
func check(logger *zap.Logger, flags *di.CLIFlags, classifier core.Classifier, textProcessor *utils.TextProcessor) (int, error) {
	var input io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return exitError, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		input = file
		logger.Info("Reading text from file", zap.String("file", flags.InputFile))
	} else {
		input = os.Stdin
		logger.Info("Reading text from stdin")
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return exitError, fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Printf("\n=== Input ===\n")
	fmt.Printf("Length: %d bytes\n", len(data))
	if flags.Verbose {
		fmt.Printf("\nPreview:\n%s\n", textProcessor.TruncateText(string(data), 500))
	}

	result := classifier.Classify(context.Background(), string(data))

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Flagged: %t\n", result.Flagged)
	fmt.Printf("Duration: %v\n", result.Duration)
	if result.Err != nil {
		fmt.Printf("Error: %v\n", result.Err)
	}
	if result.Output != "" {
		fmt.Printf("Output:\n%s\n", textProcessor.TruncateText(result.Output, 2000))
	}
	if result.Diagnostics != "" {
		fmt.Printf("Diagnostics:\n%s\n", textProcessor.TruncateText(result.Diagnostics, 2000))
	}

	if result.Flagged {
		return exitFlagged, nil
	}
	return exitClean, nil
}
