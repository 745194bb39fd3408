package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pet-medication-reminder/internal/reminder"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the daily reminder sweep once, now",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		bot, err := openBot(cfg)
		if err != nil {
			return err
		}

		svc := newService(cfg, st, newPusher(cfg, bot))
		res, err := svc.Sweep(cmd.Context())
		printSweep(cmd, res)
		return err
	},
}

func printSweep(cmd *cobra.Command, res reminder.SweepResult) {
	out := cmd.OutOrStdout()
	notified := "none"
	if len(res.Notified) > 0 {
		notified = strings.Join(res.Notified, ", ")
	}
	fmt.Fprintf(out, "date:        %s\n", reminder.FormatDate(res.Date))
	fmt.Fprintf(out, "notified:    %s\n", notified)
	fmt.Fprintf(out, "subscribers: %d\n", res.Subscribers)
	fmt.Fprintf(out, "delivered:   %d\n", res.Delivered)
	for _, f := range res.Failures {
		fmt.Fprintf(out, "failed:      %v\n", f)
	}
}
