package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dbhandler/internal/datedim"
	"github.com/vvka-141/dbhandler/internal/ui"
	"github.com/vvka-141/dbhandler/pkg/dbhandler"
)

var datedimCmd = &cobra.Command{
	Use:   "datedim",
	Short: "Generate a date dimension table",
	Long: `Generate one row per step between --start and --end inclusive.

Each row carries the local timestamp, a YYYYMMDD date id, the UTC instant and
the year, month, day and ISO week. Frequencies: D, H, Min (or T), S, ms, with
an optional multiple such as 15Min or 2D.`,
	Example: `  dbhandler datedim --start 2024-01-01 --end 2024-12-31 --freq D --format csv
  dbhandler datedim --start "2024-03-30 00:00" --end "2024-03-31 12:00" --freq H --tz pt`,
	Args: cobra.NoArgs,
	RunE: runDatedim,
}

type datedimFlagValues struct {
	start    string
	end      string
	timezone string
	freq     string
	format   string
}

var datedimFlags datedimFlagValues

func init() {
	rootCmd.AddCommand(datedimCmd)

	datedimCmd.Flags().StringVar(&datedimFlags.start, "start", "", "First timestamp (YYYY-MM-DD, YYYY-MM-DD HH:MM[:SS] or RFC 3339)")
	datedimCmd.Flags().StringVar(&datedimFlags.end, "end", "", "Last timestamp, inclusive")
	datedimCmd.Flags().StringVar(&datedimFlags.timezone, "tz", "",
		"Time zone: utc, local, br, pt or an IANA name (default from timezone in the config file, else "+dbhandler.DefaultTimezone+")")
	datedimCmd.Flags().StringVar(&datedimFlags.freq, "freq", dbhandler.DefaultDateFrequency, "Step between rows")
	datedimCmd.Flags().StringVar(&datedimFlags.format, "format", string(ui.FormatTable), "Output format: table, csv or json")
	_ = datedimCmd.MarkFlagRequired("start")
	_ = datedimCmd.MarkFlagRequired("end")
}

func runDatedim(cmd *cobra.Command, args []string) error {
	format, err := ui.ParseFormat(datedimFlags.format)
	if err != nil {
		return err
	}

	tz := datedimFlags.timezone
	if tz == "" {
		cfg, err := loadProjectConfig()
		if err != nil {
			return err
		}
		tz = firstNonEmpty(cfg.Timezone, dbhandler.DefaultTimezone)
	}

	rows, err := datedim.CreateDateTable(datedimFlags.start, datedimFlags.end,
		datedim.WithTimezone(tz),
		datedim.WithFrequency(datedimFlags.freq),
	)
	if err != nil {
		return fmt.Errorf("datedim: %w", err)
	}

	newLogger(cmd.ErrOrStderr()).Verbose("Generated %d date rows in %s", len(rows), tz)
	return ui.WriteTable(cmd.OutOrStdout(), datedim.ToTable(rows), format)
}
