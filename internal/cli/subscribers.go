package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pet-medication-reminder/internal/notify"
)

var subscribersCmd = &cobra.Command{
	Use:   "subscribers",
	Short: "Manage push recipients",
}

var subscribersAddCmd = &cobra.Command{
	Use:   "add <telegram:chat-id|sms:+number>",
	Short: "Add a recipient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		if err := validateSubscriberID(id); err != nil {
			return err
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		added, err := st.AddSubscriber(cmd.Context(), id)
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already subscribed\n", id)
		}
		return nil
	},
}

var subscribersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipients",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		subs, err := st.ListSubscribers(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range subs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

func validateSubscriberID(id string) error {
	if _, err := notify.ParseTelegramID(id); err == nil {
		return nil
	}
	if num, ok := strings.CutPrefix(id, notify.ChannelSMS+":+"); ok && num != "" {
		return nil
	}
	return fmt.Errorf("invalid subscriber id %q: want telegram:<chat id> or sms:+<number>", id)
}

func init() {
	subscribersCmd.AddCommand(subscribersAddCmd, subscribersListCmd)
}
