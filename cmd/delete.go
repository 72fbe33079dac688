package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwe-corp/facial-auth/internal/config"
	"github.com/dwe-corp/facial-auth/internal/faces"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove an enrolled user",
	Long: `Remove every enrolled face sample for the named identity, together
with its archived enrollment crops.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	name := args[0]

	svc, err := buildRegistryService(cfg)
	if err != nil {
		return err
	}

	removed, err := svc.Delete(name)
	if errors.Is(err, faces.ErrNotEnrolled) {
		return fmt.Errorf("user %q is not enrolled", name)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d enrolled face(s) for %s\n", removed, name)
	return nil
}
