package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"zoonica-gateway/internal/domain/history"
)

var historyCmd = &cobra.Command{
	Use:   "history <petID>",
	Short: "Muestra el historial médico de una mascota",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		svc := history.NewService(client, newLogger(), nil)
		h, err := svc.Load(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}

		v := history.BuildView(h, svc.Now(), cfg.APIBaseURL)
		fmt.Fprint(cmd.OutOrStdout(), renderHistory(v))
		if v.Status == history.StatusNotFound {
			return fmt.Errorf("pet %q not found", args[0])
		}
		return nil
	},
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
