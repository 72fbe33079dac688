package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwe-corp/facial-auth/internal/config"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List enrolled users",
	Long: `List every enrolled identity with its sample count, joined with the
matching record from the authentication service when one exists.`,
	RunE: runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	svc, err := buildRegistryService(cfg)
	if err != nil {
		return err
	}

	enrolled := svc.EnrolledUsers(context.Background())
	if len(enrolled) == 0 {
		fmt.Println("No users enrolled")
		return nil
	}

	for _, e := range enrolled {
		if e.User != nil {
			fmt.Printf("%-25s %d face(s)  id=%d  %s  %s\n",
				e.Name, e.FacesCount, e.User.ID, e.User.Email, e.User.Perfil)
		} else {
			fmt.Printf("%-25s %d face(s)  (not found in auth service)\n",
				e.Name, e.FacesCount)
		}
	}
	fmt.Printf("\n%d user(s), %d enrolled face(s) total\n", len(enrolled), svc.SampleCount())
	return nil
}
