package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/nsmutex/cmd/mutex"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "nsmutex",
		Short: "cross-process mutual-exclusion broker",
		Long: fmt.Sprintf(`nsmutex (v%s)

A cross-process mutual-exclusion broker: arbitrary pool names are hashed
into stable lock identities inside a privilege-isolated namespace, so
independent processes serialize on shared resources without negotiating
a naming convention.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of nsmutex",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nsmutex v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(mutex.MutexCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
