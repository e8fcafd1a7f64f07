package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zoonica-gateway/internal/domain/pets"
)

var petsOwner string

var petsCmd = &cobra.Command{
	Use:   "pets",
	Short: "Lista las mascotas de un usuario",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(petsOwner) == "" {
			return errors.New("--user is required")
		}
		cfg, err := settings()
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}

		svc := pets.NewService(client)
		items, err := svc.ListByOwner(cmdContext(cmd), petsOwner)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderPets(items, svc.Now()))
		return nil
	},
}

func init() {
	petsCmd.Flags().StringVar(&petsOwner, "user", "", "ID del usuario dueño")
	rootCmd.AddCommand(petsCmd)
}
