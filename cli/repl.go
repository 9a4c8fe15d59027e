package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/richinex/rhymer/rhyme"
	"github.com/rs/zerolog"
)

const replHelp = `Commands:
  add <word>...          store words
  has <word>             check whether a word is stored
  rm <word>              remove a word
  rhyme <word>...        find the best rhyme for each word
  count                  number of stored words
  dump                   list every word
  complete <prefix> [n]  words starting with prefix
  search <pattern> [n]   words containing pattern
  stats                  entries, nodes and fingerprint
  help                   show this help
  quit                   leave
`

// Repl runs an interactive session over dict, reading commands from in
// until EOF or quit. Cancelling ctx ends the session cleanly, even while
// waiting for input.
func Repl(ctx context.Context, dict *rhyme.Dictionary, in io.Reader, out io.Writer, limit int, logger zerolog.Logger) error {
	session := uuid.New().String()
	logger = logger.With().Str("session", session).Logger()
	logger.Debug().Msg("Session started")

	fmt.Fprintf(out, "Rhymer (%d words). Type 'help' for commands, 'quit' to leave.\n\n", dict.Count())

	lines := newLineReader(in)
	defer lines.stop()

	for {
		fmt.Fprint(out, "> ")

		var text string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			logger.Debug().Msg("Session interrupted")
			return nil
		case line, ok := <-lines.lines:
			if !ok {
				logger.Debug().Msg("Session ended")
				return lines.err()
			}
			text = line
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]
		if cmd == "quit" || cmd == "exit" {
			logger.Debug().Msg("Session ended")
			return nil
		}

		logger.Debug().Str("command", cmd).Int("args", len(args)).Msg("Command")
		if err := runReplCommand(dict, cmd, args, limit, out); err != nil {
			return err
		}
	}
}

// lineReader scans lines on its own goroutine so the session can stop
// while a read is still blocked.
type lineReader struct {
	lines chan string
	done  chan struct{}
	errCh chan error
}

func newLineReader(in io.Reader) *lineReader {
	r := &lineReader{
		lines: make(chan string),
		done:  make(chan struct{}),
		errCh: make(chan error, 1),
	}

	go func() {
		defer close(r.lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case r.lines <- scanner.Text():
			case <-r.done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			r.errCh <- fmt.Errorf("failed to read input: %w", err)
		}
	}()

	return r
}

// err reports the scan error, if any. Call only after lines is closed.
func (r *lineReader) err() error {
	select {
	case err := <-r.errCh:
		return err
	default:
		return nil
	}
}

func (r *lineReader) stop() {
	close(r.done)
}

func runReplCommand(dict *rhyme.Dictionary, cmd string, args []string, limit int, out io.Writer) error {
	switch cmd {
	case "add":
		if len(args) == 0 {
			return usage(out, "add <word>...")
		}
		added := 0
		for _, w := range args {
			ok, err := dict.Add(w)
			if err != nil {
				return printError(out, w, err)
			}
			if ok {
				added++
			}
		}
		_, err := fmt.Fprintf(out, "added %d of %d\n", added, len(args))
		return err

	case "has":
		if len(args) != 1 {
			return usage(out, "has <word>")
		}
		ok, err := dict.Has(args[0])
		if err != nil {
			return printError(out, args[0], err)
		}
		_, err = fmt.Fprintln(out, yesNo(ok))
		return err

	case "rm":
		if len(args) != 1 {
			return usage(out, "rm <word>")
		}
		ok, err := dict.Remove(args[0])
		if err != nil {
			return printError(out, args[0], err)
		}
		if !ok {
			_, err = fmt.Fprintf(out, "%s: not stored\n", args[0])
			return err
		}
		_, err = fmt.Fprintf(out, "removed %s\n", args[0])
		return err

	case "rhyme":
		if len(args) == 0 {
			return usage(out, "rhyme <word>...")
		}
		return RhymeWords(dict, args, out)

	case "count":
		_, err := fmt.Fprintln(out, dict.Count())
		return err

	case "dump":
		return Dump(dict, out)

	case "complete", "search":
		if len(args) < 1 || len(args) > 2 {
			return usage(out, cmd+" <text> [n]")
		}
		n := limit
		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v <= 0 {
				return usage(out, cmd+" <text> [n]")
			}
			n = v
		}
		if cmd == "complete" {
			return Complete(dict, args[0], n, out)
		}
		return Search(dict, args[0], n, out)

	case "stats":
		return PrintStats(dict, out)

	case "help":
		_, err := fmt.Fprint(out, replHelp)
		return err

	default:
		_, err := fmt.Fprintf(out, "unknown command %q\n%s", cmd, replHelp)
		return err
	}
}

func usage(out io.Writer, text string) error {
	_, err := fmt.Fprintf(out, "usage: %s\n", text)
	return err
}

func printError(out io.Writer, word string, err error) error {
	_, werr := fmt.Fprintf(out, "%s: %s\n", word, describeError(err))
	return werr
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
