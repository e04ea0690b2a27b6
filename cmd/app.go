// Package cmd implements the CLI application to report cost-basis lots
// from hledger journals.
package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/dbeal/hlots"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&fifoCmd{}, "reports")
	c.Register(&avgCmd{}, "reports")
	c.Register(&viewCmd{}, "reports")

	c.Register(&sellCmd{}, "transactions")
	c.Register(&buyCmd{}, "transactions")

	c.Register(&pricesCmd{}, "market")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// journalFiles collects repeated -f flags.
type journalFiles []string

func (f *journalFiles) String() string { return strings.Join(*f, ", ") }
func (f *journalFiles) Set(v string) error {
	*f = append(*f, v)
	return nil
}

var files journalFiles

func init() {
	flag.Var(&files, "f", "Journal file to read (can be repeated). Defaults to $LEDGER_FILE or hledger's own default.")
}

// newHledger returns the hledger collaborator for the selected journals.
func newHledger() hlots.Hledger {
	selected := []string(files)
	if len(selected) == 0 {
		if env := os.Getenv("LEDGER_FILE"); env != "" {
			selected = []string{env}
		}
	}
	return hlots.Hledger{Files: selected}
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// Fall back to the raw markdown.
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

// prompt reads one line from stdin after displaying a label, returning the
// fallback when the user enters nothing.
func prompt(label, fallback string) string {
	if fallback != "" {
		fmt.Fprintf(os.Stderr, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(os.Stderr, "%s: ", label)
	}
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return fallback
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		return fallback
	}
	return answer
}
