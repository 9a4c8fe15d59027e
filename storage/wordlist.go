package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileSource reads a word list with one word per line.
// Surrounding whitespace is trimmed; blank lines and lines starting
// with '#' are skipped.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the word list at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Each calls fn for every word in the file.
func (f *FileSource) Each(ctx context.Context, fn func(word string) error) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	return ReadWords(ctx, file, fn)
}

// ReadWords calls fn for every word read from r.
func ReadWords(ctx context.Context, r io.Reader, fn func(word string) error) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read word list: %w", err)
	}
	return nil
}
