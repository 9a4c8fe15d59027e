// Command execution for CLI commands.
//
// Information Hiding:
// - Word source selection and loading hidden
// - Server lifecycle hidden
// - Output formatting hidden

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/richinex/rhymer/api"
	"github.com/richinex/rhymer/config"
	"github.com/richinex/rhymer/rhyme"
	"github.com/richinex/rhymer/storage"
	"github.com/rs/zerolog"
)

// OpenDictionary builds a dictionary from the configured word sources.
// The SQLite store is read first, then the text word list.
func OpenDictionary(ctx context.Context, store config.StoreConfig, logger zerolog.Logger) (*rhyme.Dictionary, error) {
	dict := rhyme.New()

	if store.DBPath != "" {
		db, err := storage.OpenSqlite(store.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := loadFrom(ctx, dict, db, "sqlite", store.DBPath, logger); err != nil {
			return nil, err
		}
	}

	if store.WordList != "" {
		src := storage.NewFileSource(store.WordList)
		if err := loadFrom(ctx, dict, src, "file", store.WordList, logger); err != nil {
			return nil, err
		}
	}

	return dict, nil
}

func loadFrom(ctx context.Context, dict *rhyme.Dictionary, src rhyme.WordSource, kind, path string, logger zerolog.Logger) error {
	start := time.Now()
	report, err := dict.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, path, err)
	}

	logger.Info().
		Str("source", kind).
		Str("path", path).
		Int("added", report.Added).
		Int("duplicate", report.Duplicate).
		Int("rejected", report.Rejected).
		Dur("elapsed", time.Since(start)).
		Msg("Loaded words")
	return nil
}

// RhymeWords prints the best rhyme for each word. Lookup failures are
// printed per word; only write errors are returned.
func RhymeWords(dict *rhyme.Dictionary, words []string, out io.Writer) error {
	for _, w := range words {
		if err := printRhyme(dict, w, out); err != nil {
			return err
		}
	}
	return nil
}

func printRhyme(dict *rhyme.Dictionary, word string, out io.Writer) error {
	match, err := dict.Rhyme(word)
	if err != nil {
		_, werr := fmt.Fprintf(out, "%s: %s\n", word, describeError(err))
		return werr
	}
	_, err = fmt.Fprintf(out, "%s -> %s (%d shared)\n", match.Word, match.Rhyme, match.SharedSuffix)
	return err
}

// describeError turns dictionary errors into user-facing text.
func describeError(err error) string {
	switch {
	case errors.Is(err, rhyme.ErrEmptyWord):
		return "empty word"
	case errors.Is(err, rhyme.ErrInvalidWord):
		return "not valid UTF-8"
	case errors.Is(err, rhyme.ErrEmptyTree):
		return "no words loaded"
	case errors.Is(err, rhyme.ErrNoJointSuffix):
		return "no rhyme found"
	case errors.Is(err, rhyme.ErrOnlyKeyMatches):
		return "only the word itself matches"
	default:
		return err.Error()
	}
}

// Import copies a word list file into the SQLite store at dbPath.
func Import(ctx context.Context, dbPath, file string, out io.Writer) error {
	var words []string
	err := storage.NewFileSource(file).Each(ctx, func(word string) error {
		words = append(words, word)
		return nil
	})
	if err != nil {
		return err
	}

	db, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	added, err := db.AddWords(ctx, words)
	if err != nil {
		return err
	}
	total, err := db.Count(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Imported %d new words (%d read, %d stored)\n", added, len(words), total)
	return err
}

// Forget removes words from the SQLite store at dbPath.
func Forget(ctx context.Context, dbPath string, words []string, out io.Writer) error {
	db, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for _, w := range words {
		removed, err := db.RemoveWord(ctx, w)
		if err != nil {
			return err
		}
		status := "removed"
		if !removed {
			status = "not stored"
		}
		if _, err := fmt.Fprintf(out, "%s: %s\n", w, status); err != nil {
			return err
		}
	}
	return nil
}

// Dump prints every word, sorted, one per line.
func Dump(dict *rhyme.Dictionary, out io.Writer) error {
	return printLines(out, dict.Words())
}

// PrintStats prints the dictionary size and fingerprint.
func PrintStats(dict *rhyme.Dictionary, out io.Writer) error {
	st := dict.Stats()
	_, err := fmt.Fprintf(out, "entries:     %d\nnodes:       %d\nfingerprint: %s\n",
		st.Entries, st.Nodes, st.FingerprintHex())
	return err
}

// Complete prints words starting with prefix.
func Complete(dict *rhyme.Dictionary, prefix string, limit int, out io.Writer) error {
	return printLines(out, dict.Complete(prefix, limit))
}

// Search prints words containing pattern.
func Search(dict *rhyme.Dictionary, pattern string, limit int, out io.Writer) error {
	return printLines(out, dict.Search(pattern, limit))
}

func printLines(out io.Writer, lines []string) error {
	if len(lines) == 0 {
		_, err := fmt.Fprintln(out, "(none)")
		return err
	}
	_, err := fmt.Fprintln(out, strings.Join(lines, "\n"))
	return err
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, dict *rhyme.Dictionary, cfg config.ServerConfig, logger zerolog.Logger) error {
	srv := api.NewServer(cfg.Addr, dict, logger, api.Options{
		ReadTimeout: cfg.ReadTimeout,
		ResultLimit: cfg.ResultLimit,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}
