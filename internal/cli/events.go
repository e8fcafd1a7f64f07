package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"zoonica-gateway/internal/domain/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Lista los eventos activos",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		items, err := events.NewService(client).ListActive(cmdContext(cmd))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderEvents(items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
