package classifier

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/mikey/mail-screen/internal/core"
	"github.com/mikey/mail-screen/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// waitDelay is how long Wait keeps waiting for output pipes after the
// process has been killed
const waitDelay = 2 * time.Second

// ExecClassifier classifies text by running an external analyzer executable.
//
// The analyzer is started as `<path> <mode> <lookup address>`, receives the
// text on stdin and is considered to have flagged the text when it fails in
// any way or writes anything to stdout.
type ExecClassifier struct {
	path          string
	mode          string
	lookupAddress string
	timeout       time.Duration
	slots         *semaphore.Weighted
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewExecClassifier creates a new classifier backed by an external executable.
// A zero timeout or maxConcurrent leaves that dimension unbounded.
func NewExecClassifier(
	path string,
	mode string,
	lookupAddress string,
	timeout time.Duration,
	maxConcurrent int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *ExecClassifier {
	c := &ExecClassifier{
		path:          path,
		mode:          mode,
		lookupAddress: lookupAddress,
		timeout:       timeout,
		logger:        logger,
		textProcessor: textProcessor,
	}
	if maxConcurrent > 0 {
		c.slots = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return c
}

// Args returns the arguments the analyzer is started with
func (c *ExecClassifier) Args() []string {
	return []string{c.mode, c.lookupAddress}
}

// Classify runs the analyzer once over text
func (c *ExecClassifier) Classify(ctx context.Context, text string) *core.ClassificationResult {
	start := time.Now()
	stdout, stderr, err := c.run(ctx, text)

	result := &core.ClassificationResult{
		Flagged:     err != nil || stdout != "",
		Output:      stdout,
		Diagnostics: stderr,
		Err:         err,
		Duration:    time.Since(start),
	}

	c.logger.Debug("Classifier finished",
		zap.String("path", c.path),
		zap.Bool("flagged", result.Flagged),
		zap.Int("stdout_bytes", len(stdout)),
		zap.Int("stderr_bytes", len(stderr)),
		zap.Duration("duration", result.Duration),
		zap.Error(err))

	return result
}

func (c *ExecClassifier) run(ctx context.Context, text string) (string, string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.slots != nil {
		if err := c.slots.Acquire(ctx, 1); err != nil {
			return "", "", fmt.Errorf("waiting for a classifier slot: %w", err)
		}
		defer c.slots.Release(1)
	}

	stdout := &cappedBuffer{limit: maxOutputBytes}
	stderr := &cappedBuffer{limit: maxOutputBytes}
	cmd := exec.CommandContext(ctx, c.path, c.Args()...)
	cmd.Stdin = c.textProcessor.UTF8Reader(text)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.String(), stderr.String(), fmt.Errorf("classifier %s: %w: %v", c.path, ctxErr, err)
		}
		return stdout.String(), stderr.String(), fmt.Errorf("classifier %s: %w", c.path, err)
	}
	if stdout.overflow || stderr.overflow {
		return stdout.String(), stderr.String(), fmt.Errorf("classifier %s: %w", c.path, ErrOutputLimit)
	}

	return stdout.String(), stderr.String(), nil
}
