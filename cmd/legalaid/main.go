// legalaid serves the legal-aid portal API: case intake, AI drafting actions,
// provider directories, dashboards and document templates.
//
// Usage:
//
//	legalaid serve
//	legalaid migrate
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded first when present.
//
//	@title			Legal Aid Portal API
//	@version		1.0
//	@description	Case intake, AI drafting actions, provider directories and dashboards for a legal-aid portal.
//	@license.name	MIT
//	@BasePath		/api/v1
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "legalaid",
	Short: "Legal-aid portal backend",
	Long:  "legalaid stores citizen cases and drafts legal advice, eBriefs,\nbreach guidance and FIRs through a generative model.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return loadDotEnv(envFile)
	},
}

var envFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.Version = version
}

// loadDotEnv applies path on top of the process environment. Variables that
// are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
