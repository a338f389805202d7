package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dbhandler/internal/db"
	"github.com/vvka-141/dbhandler/internal/handler"
	"github.com/vvka-141/dbhandler/internal/tui"
	"github.com/vvka-141/dbhandler/internal/ui"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

const (
	modeRows  = "rows"
	modeTable = "table"
)

var queryCmd = &cobra.Command{
	Use:   "query [SQL]",
	Short: "Run a query with reconnect and retry",
	Long: `Run a single query through a resilient call.

In rows mode the query runs inside a cursor and rows are keyed by column name.
In table mode the result keeps driver column order and column types.

Without --strict a call whose attempts all fail prints an empty result and
exits 0. With --strict it exits non-zero with the last error.`,
	Example: `  dbhandler query "SELECT 1 AS one" --profile warehouse
  dbhandler query --file report.sql --param 2024-01-01 --format csv
  dbhandler query "SELECT * FROM t" --connection sqlite3:///tmp/data.db --mode table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

type queryFlagValues struct {
	conn     connectionFlags
	file     string
	maxTries int
	params   []string
	mode     string
	format   string
	strict   bool
}

var queryFlags queryFlagValues

func init() {
	rootCmd.AddCommand(queryCmd)

	queryFlags.conn.register(queryCmd)
	queryCmd.Flags().StringVarP(&queryFlags.file, "file", "f", "", "Read the query text from a file")
	queryCmd.Flags().IntVar(&queryFlags.maxTries, "max-tries", dbhandler.DefaultMaxTries,
		"Attempts for this call (default from retry.max_tries in the config file)")
	queryCmd.Flags().StringArrayVar(&queryFlags.params, "param", nil,
		"Positional bind value, repeatable. Bound in order to $1, $2... (or ? for SQLite)")
	queryCmd.Flags().StringVar(&queryFlags.mode, "mode", modeRows, "Result mode: rows or table")
	queryCmd.Flags().StringVar(&queryFlags.format, "format", string(ui.FormatTable), "Output format: table, csv or json")
	queryCmd.Flags().BoolVar(&queryFlags.strict, "strict", false, "Exit non-zero when every attempt fails")
}

func runQuery(cmd *cobra.Command, args []string) error {
	text, err := queryText(args, queryFlags.file)
	if err != nil {
		return err
	}
	if queryFlags.mode != modeRows && queryFlags.mode != modeTable {
		return fmt.Errorf("invalid argument --mode %q (want rows or table): %w", queryFlags.mode, dbhandler.ErrInvalidArgument)
	}
	format, err := ui.ParseFormat(queryFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr())

	access, err := resolveAccess(queryFlags.conn, cfg, logger)
	if err != nil {
		return err
	}
	driver, err := db.NewDriver(access.DriverName(), logger)
	if err != nil {
		return err
	}
	opts, err := handlerOptions(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	h, err := handler.New(ctx, driver, access, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(ctx); cerr != nil {
			logger.Verbose("close: %v", cerr)
		}
	}()

	var callOpts []handler.CallOption
	if cmd.Flags().Changed("max-tries") {
		callOpts = append(callOpts, handler.WithMaxTries(queryFlags.maxTries))
	}

	q := dbhandler.Query(text, bindParams(queryFlags.params)...)
	out := cmd.OutOrStdout()

	if queryFlags.mode == modeTable {
		table, err := tui.RunWithProgress(ctx, "Running query", describeTable, func(ctx context.Context) (*dbhandler.Table, error) {
			t, outcome := h.QueryTableWithOutcome(ctx, q, callOpts...)
			return t, strictErr(outcome)
		})
		if err != nil {
			return err
		}
		return ui.WriteTable(out, table, format)
	}

	rows, err := tui.RunWithProgress(ctx, "Running query", describeRows, func(ctx context.Context) ([]dbhandler.Row, error) {
		rows, outcome := h.FetchWithOutcome(ctx, q, callOpts...)
		return rows, strictErr(outcome)
	})
	if err != nil {
		return err
	}
	return ui.WriteRows(out, rows, format)
}

// strictErr surfaces the outcome error only under --strict.
func strictErr(outcome dbhandler.Outcome) error {
	if queryFlags.strict && outcome.Failed() {
		return outcome.Err
	}
	return nil
}

func queryText(args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", fmt.Errorf("invalid argument: give the query inline or with --file, not both: %w", dbhandler.ErrInvalidArgument)
	case len(args) == 1:
		return args[0], nil
	case file != "":
		return handler.LoadQuery(file)
	default:
		return "", fmt.Errorf("invalid argument: no query given: %w", dbhandler.ErrInvalidArgument)
	}
}

func bindParams(values []string) []any {
	params := make([]any, len(values))
	for i, v := range values {
		params[i] = v
	}
	return params
}

func describeRows(rows []dbhandler.Row) string {
	return fmt.Sprintf("%d row(s)", len(rows))
}

func describeTable(t *dbhandler.Table) string {
	return fmt.Sprintf("%d row(s)", t.Len())
}
