package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vvka-141/dbhandler/internal/clock"
)

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Print the current time in a time zone",
	Example: `  dbhandler now
  dbhandler now --zone br
  dbhandler now --zone Asia/Tokyo`,
	Args: cobra.NoArgs,
	RunE: runNow,
}

var nowFlags struct {
	zone string
	clk  clock.Clock
}

func init() {
	rootCmd.AddCommand(nowCmd)
	nowCmd.Flags().StringVar(&nowFlags.zone, "zone", "utc", "Time zone: utc, local, br, pt or an IANA name")
}

func runNow(cmd *cobra.Command, args []string) error {
	t, err := nowFlags.clk.NowIn(nowFlags.zone)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Format(time.RFC3339))
	return err
}
