// Package cli implements the sqltranslator terminal commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ectormgl/SQLTranslator/internal/config"
	"github.com/ectormgl/SQLTranslator/internal/dsn"
	"github.com/ectormgl/SQLTranslator/internal/session"
)

// Version is set at build time.
var Version = "0.1.0"

type Options struct {
	// Database seeds the chat connection flags.
	Database config.DatabaseConfig
	// NewManager is called once per chat, after flags are parsed.
	NewManager func() (*session.Manager, error)
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, opts Options) int {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	root := NewRootCommand(opts)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", dsn.Mask(err.Error()))
		return 1
	}
	return 0
}

func NewRootCommand(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:   "sqltranslator",
		Short: "Ask questions about a SQL database in plain language",
		Long: `sqltranslator connects to a MySQL, PostgreSQL, Oracle or DuckDB database,
turns each question into a SQL query with a language model and runs it.

Examples:
  sqltranslator chat --dialect mysql --host localhost --user root --database chinook
  sqltranslator chat --uri postgresql://analyst:secret@db:5432/chinook
  sqltranslator dialects`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if opts.Stdin != nil {
		root.SetIn(opts.Stdin)
	}
	if opts.Stdout != nil {
		root.SetOut(opts.Stdout)
	}
	if opts.Stderr != nil {
		root.SetErr(opts.Stderr)
	}

	root.AddCommand(newChatCommand(opts))
	root.AddCommand(newDialectsCommand())
	return root
}

func newDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported database dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := [][]string{{"Dialect", "Name", "Default port", "URI"}}
			for _, dialect := range dsn.Dialects() {
				port := "-"
				if p := dialect.DefaultPort(); p > 0 {
					port = fmt.Sprint(p)
				}
				data = append(data, []string{string(dialect), dialect.DisplayName(), port, dialect.Placeholder()})
			}
			return renderTable(cmd.OutOrStdout(), data)
		},
	}
}
