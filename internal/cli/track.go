package cli

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"zoonica-gateway/internal/adapters/geo/replay"
	"zoonica-gateway/internal/domain/tracking"
)

var (
	trackRoute     string
	trackAutoStart bool
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Reproduce una ruta en la pantalla de ubicación en vivo",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(trackRoute) == "" {
			return errors.New("--route is required")
		}
		cfg, err := settings()
		if err != nil {
			return err
		}
		route, err := replay.Load(trackRoute)
		if err != nil {
			return err
		}

		tracker := tracking.NewTracker(replay.New(route), cfg.Tracking.WatchOptions(), tracking.WithLogger(newLogger()))
		defer tracker.Close()

		if tracker.Mount(cmdContext(cmd)) == tracking.PermissionGranted && trackAutoStart {
			if err := tracker.Start(); err != nil {
				return err
			}
		}

		model := newTrackModel(tracker, route.Name)
		defer model.close()

		p := tea.NewProgram(model, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
		_, err = p.Run()
		return err
	},
}

func init() {
	trackCmd.Flags().StringVar(&trackRoute, "route", "", "archivo YAML/JSON con la ruta")
	trackCmd.Flags().BoolVar(&trackAutoStart, "start", true, "iniciar el seguimiento al abrir")
	rootCmd.AddCommand(trackCmd)
}
