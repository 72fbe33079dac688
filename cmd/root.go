package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facial-auth",
	Short: "Facial recognition service for user authentication",
	Long: `Facial Auth runs a facial recognition REST API backed by a file-based
registry of enrolled face encodings. Recognized faces are resolved to user
records in an external authentication service.

The CLI can also enroll faces, list enrolled users and remove them without
going through the HTTP API.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
