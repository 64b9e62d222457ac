// Command contactbook runs the contacts API and its operational tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contactbook",
	Short: "Personal contacts API",
	Long: `contactbook serves an authenticated contacts API with upcoming
birthday lookups and account avatars.

Configuration is read from the environment. Without DATABASE_URL and
REDIS_URL everything runs in memory.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
