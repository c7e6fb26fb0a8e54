package utils

import (
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const truncationMarker = " [... truncated ...]"

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	return truncated + truncationMarker
}

// UTF8Reader returns a reader yielding text as UTF-8, with invalid byte
// sequences replaced by U+FFFD
func (tp *TextProcessor) UTF8Reader(text string) io.Reader {
	r := strings.NewReader(text)
	if utf8.ValidString(text) {
		return r
	}

	tp.logger.Debug("Replacing invalid UTF-8 sequences", zap.Int("size", len(text)))
	return transform.NewReader(r, unicode.UTF8.NewDecoder())
}
