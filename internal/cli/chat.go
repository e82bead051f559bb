package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ectormgl/SQLTranslator/internal/dsn"
	"github.com/ectormgl/SQLTranslator/internal/query"
	"github.com/ectormgl/SQLTranslator/internal/session"
)

type chatFlags struct {
	dialect  string
	uri      string
	host     string
	port     string
	user     string
	password string
	database string
	hosted   bool
	export   bool
}

func newChatCommand(opts Options) *cobra.Command {
	flags := chatFlags{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question and answer session",
		Long: `Connects to a database and reads questions from standard input, one per line.

Commands inside the chat:
  /schema   print the schema sent to the language model
  /quit     leave the chat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), cmd, opts, flags)
		},
	}

	db := opts.Database
	cmd.Flags().StringVar(&flags.dialect, "dialect", db.Dialect, "database type: mysql, postgresql, oracle or duckdb")
	cmd.Flags().StringVar(&flags.uri, "uri", "", "connection URI, takes precedence over host fields")
	cmd.Flags().StringVar(&flags.host, "host", db.Host, "database host")
	cmd.Flags().StringVar(&flags.port, "port", db.Port, "database port")
	cmd.Flags().StringVarP(&flags.user, "user", "u", db.User, "database user")
	cmd.Flags().StringVarP(&flags.password, "password", "p", db.Password, "database password")
	cmd.Flags().StringVarP(&flags.database, "database", "d", db.Name, "database name, or file path for duckdb")
	cmd.Flags().BoolVar(&flags.hosted, "hosted", false, "use the hosted database URI from the environment")
	cmd.Flags().BoolVar(&flags.export, "export", false, "store every result as Parquet in the object store")
	return cmd
}

func runChat(ctx context.Context, cmd *cobra.Command, opts Options, flags chatFlags) error {
	if opts.NewManager == nil {
		return errors.New("chat is not configured")
	}
	manager, err := opts.NewManager()
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	s := manager.Create()
	for _, turn := range s.Turns() {
		_, _ = fmt.Fprintln(out, turn.Text)
	}

	// An explicit --uri switches to URI mode even when a dialect is set.
	// The hosted URI always carries its own dialect.
	request := session.ConnectRequest{
		Dialect:   flags.dialect,
		UseHosted: flags.hosted,
		UseURI:    !flags.hosted && strings.TrimSpace(flags.uri) != "",
		URI:       flags.uri,
		Host:      flags.host,
		Port:      flags.port,
		User:      flags.user,
		Password:  flags.password,
		Database:  flags.database,
	}
	if request.UseHosted || (request.UseURI && !cmd.Flags().Changed("dialect")) {
		request.Dialect = ""
	}
	if err := s.Connect(ctx, request); err != nil {
		return err
	}
	snapshot := s.Snapshot()
	_, _ = fmt.Fprintf(out, "Connected to %s (%s)\n", snapshot.Dialect.DisplayName(), snapshot.URI)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/schema":
			text, err := s.Schema(ctx)
			if err != nil {
				_, _ = fmt.Fprintf(errOut, "Error: %s\n", dsn.Mask(err.Error()))
				continue
			}
			_, _ = fmt.Fprintln(out, text)
			continue
		}

		outcome, err := s.Ask(ctx, line, session.AskOptions{Export: flags.export})
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %s\n", dsn.Mask(err.Error()))
			continue
		}
		printOutcome(out, outcome)
	}
	_, _ = fmt.Fprintln(out)
	return scanner.Err()
}

func printOutcome(out io.Writer, outcome session.Outcome) {
	_, _ = fmt.Fprintf(out, "SQL: %s\n", strings.TrimSpace(outcome.SQL))
	if outcome.Err == nil && len(outcome.Columns) > 0 {
		data := make([][]string, 0, len(outcome.Rows)+1)
		data = append(data, outcome.Columns)
		for _, row := range outcome.Rows {
			cells := make([]string, len(row))
			for i, value := range row {
				cells[i] = query.Text(value)
			}
			data = append(data, cells)
		}
		if err := renderTable(out, data); err != nil {
			_, _ = fmt.Fprintf(out, "(table render failed: %v)\n", err)
		}
	}
	_, _ = fmt.Fprintln(out, outcome.Response)
	switch {
	case outcome.Export != nil:
		_, _ = fmt.Fprintf(out, "Exported %d rows to %s\n", outcome.Export.Rows, outcome.Export.Key)
	case outcome.ExportErr != nil:
		_, _ = fmt.Fprintf(out, "Export failed: %v\n", outcome.ExportErr)
	}
}

func renderTable(out io.Writer, data [][]string) error {
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, rendered)
	return err
}
