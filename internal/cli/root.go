package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgbind/pgbind/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	flags   config.Flags
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "pgbind",
	Short: "Typed Go bindings from annotated SQL",
	Long: `Pgbind turns a directory of annotated .sql files into strongly typed Go
bindings. It asks a live PostgreSQL server for the parameter and result
types of every query, so the database itself is the source of truth.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				return fmt.Errorf("failed to load .env: %w", err)
			}
		}

		var err error
		if _, statErr := os.Stat(cfgFile); os.IsNotExist(statErr) {
			cfg = &config.Config{}
		} else {
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pgbind %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pgbind.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&flags.URL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().StringVar(&flags.Queries, "queries", "", "annotated .sql file or directory")
	rootCmd.PersistentFlags().StringVar(&flags.Out, "out", "", "output directory for generated files")
	rootCmd.PersistentFlags().StringVar(&flags.Package, "package", "", "package name for generated files")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

func SetVersion(v string) {
	version = v
}

func Execute() error {
	return rootCmd.Execute()
}
