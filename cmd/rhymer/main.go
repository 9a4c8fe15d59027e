// Package main provides the rhymer CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/richinex/rhymer/cli"
	"github.com/richinex/rhymer/config"
	"github.com/richinex/rhymer/internal/logging"
	"github.com/richinex/rhymer/rhyme"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbPath   string
	wordList string
	logLevel string
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "rhymer",
		Short: "Find the best rhyme for a word",
		Long: `A rhyming dictionary backed by a reverse-keyed trie.

Words are loaded at startup from a SQLite word store (--db) and/or a
text word list (--words, one word per line). The best rhyme for a word
is the stored word, other than itself, sharing the longest suffix.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite word store (overrides RHYMER_DB_PATH)")
	rootCmd.PersistentFlags().StringVarP(&wordList, "words", "w", "", "Word list file (overrides RHYMER_WORDLIST)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides RHYMER_LOG_LEVEL)")

	rootCmd.AddCommand(rhymeCmd())
	rootCmd.AddCommand(replCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(forgetCmd())
	rootCmd.AddCommand(dumpCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(searchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves settings with flag overrides and builds the logger.
func setup() (config.Settings, zerolog.Logger, error) {
	settings, err := config.New()
	if err != nil {
		return config.Settings{}, zerolog.Logger{}, err
	}
	if logLevel != "" {
		if err := settings.Log.SetLevel(logLevel); err != nil {
			return config.Settings{}, zerolog.Logger{}, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if dbPath != "" {
		settings.Store.DBPath = dbPath
	}
	if wordList != "" {
		settings.Store.WordList = wordList
	}

	return settings, logging.New(settings.Log, os.Stderr), nil
}

// openDictionary loads the configured word sources.
func openDictionary(ctx context.Context) (*rhyme.Dictionary, config.Settings, zerolog.Logger, error) {
	settings, logger, err := setup()
	if err != nil {
		return nil, settings, logger, err
	}

	dict, err := cli.OpenDictionary(ctx, settings.Store, logger)
	if err != nil {
		return nil, settings, logger, err
	}
	return dict, settings, logger, nil
}

func rhymeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rhyme [word...]",
		Short: "Print the best rhyme for each word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, _, err := openDictionary(cmd.Context())
			if err != nil {
				return err
			}
			return cli.RhymeWords(dict, args, cmd.OutOrStdout())
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dict, settings, logger, err := openDictionary(ctx)
			if err != nil {
				return err
			}
			return cli.Repl(ctx, dict, cmd.InOrStdin(), cmd.OutOrStdout(), settings.Server.ResultLimit, logger)
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dictionary over HTTP",
		Long: `Serve the dictionary over HTTP.

Routes:
  GET    /words               list words
  GET    /words/{word}        check a word
  PUT    /words/{word}        add a word
  DELETE /words/{word}        remove a word
  GET    /rhymes/{word}       best rhyme
  GET    /complete/{prefix}   words starting with prefix
  GET    /search/{pattern}    words containing pattern
  GET    /stats               entries, nodes, fingerprint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dict, settings, logger, err := openDictionary(ctx)
			if err != nil {
				return err
			}
			if addr != "" {
				settings.Server.Addr = addr
			}
			return cli.Serve(ctx, dict, settings.Server, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides RHYMER_ADDR)")

	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Copy a word list file into the SQLite word store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := setup()
			if err != nil {
				return err
			}
			if settings.Store.DBPath == "" {
				return fmt.Errorf("no database: pass --db or set RHYMER_DB_PATH")
			}
			return cli.Import(cmd.Context(), settings.Store.DBPath, args[0], cmd.OutOrStdout())
		},
	}
}

func forgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget [word...]",
		Short: "Remove words from the SQLite word store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, _, err := setup()
			if err != nil {
				return err
			}
			if settings.Store.DBPath == "" {
				return fmt.Errorf("no database: pass --db or set RHYMER_DB_PATH")
			}
			return cli.Forget(cmd.Context(), settings.Store.DBPath, args, cmd.OutOrStdout())
		},
	}
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every stored word",
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, _, err := openDictionary(cmd.Context())
			if err != nil {
				return err
			}
			return cli.Dump(dict, cmd.OutOrStdout())
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dictionary size and fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, _, _, err := openDictionary(cmd.Context())
			if err != nil {
				return err
			}
			return cli.PrintStats(dict, cmd.OutOrStdout())
		},
	}
}

func completeCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "complete [prefix]",
		Short: "Print words starting with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, settings, _, err := openDictionary(cmd.Context())
			if err != nil {
				return err
			}
			return cli.Complete(dict, args[0], resultLimit(limit, settings), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default RHYMER_RESULT_LIMIT)")

	return cmd
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [pattern]",
		Short: "Print words containing pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, settings, _, err := openDictionary(cmd.Context())
			if err != nil {
				return err
			}
			return cli.Search(dict, args[0], resultLimit(limit, settings), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default RHYMER_RESULT_LIMIT)")

	return cmd
}

func resultLimit(flag int, settings config.Settings) int {
	if flag > 0 {
		return flag
	}
	return settings.Server.ResultLimit
}
