package cmd

import (
	"github.com/spf13/cobra"

	"github.com/km-arc/go-ioc/framework/app"
)

var (
	version  = "dev"
	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "go-ioc",
	Short: "An IoC container with a small HTTP framework around it",
	Long: `go-ioc wires services through a reflection-based IoC container.

It can serve the framework's HTTP endpoints, list the container's
registrations, or walk through a sample resolution.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&envFiles, "env", "e", nil,
		"env files to load (default: .env)")
}

// newApplication builds the application from the --env files.
func newApplication() (*app.Application, error) {
	return app.New(app.WithEnvFiles(envFiles...))
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
