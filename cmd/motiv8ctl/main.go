package main

import (
	"os"

	"github.com/spf13/cobra"

	"motiv8/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "motiv8ctl",
	Short: "Administer the Motiv8 mission engine",
	Long: `motiv8ctl manages the mission catalog and inspects progression rules.

Firestore access uses the same environment as the API server
(FIREBASE_PROJECT_ID plus FIREBASE_SERVICE_ACCOUNT_JSON or
FIREBASE_SERVICE_ACCOUNT_PATH).`,
	SilenceUsage: true,
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
