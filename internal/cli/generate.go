package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pgbind/pgbind/internal/codegen"
	_ "github.com/pgbind/pgbind/internal/codegen/golang"
	"github.com/pgbind/pgbind/internal/config"
	"github.com/pgbind/pgbind/internal/introspect"
	"github.com/pgbind/pgbind/internal/parser"
	"github.com/pgbind/pgbind/internal/pgconn"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate typed Go bindings from annotated SQL",
	Long: `Generate parses every annotated query, asks the database for its parameter
and result types, and writes one Go file per query plus the shared querier
and enum types.

Example:
  pgbind generate --url postgres://user@localhost/mydb --queries ./queries --out ./gen`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rendered, outDir, err := renderQueries()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		names := sortedFileNames(rendered)
		for _, name := range names {
			if err := os.WriteFile(filepath.Join(outDir, name), rendered[name], 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", name, err)
			}
		}

		fmt.Printf("Generated %d files into %s\n", len(names), outDir)
		return nil
	},
}

// renderQueries runs the shared pipeline: parse, connect, introspect, render.
func renderQueries() (map[string][]byte, string, error) {
	dbURL, err := cfg.GetDatabaseURL(&flags)
	if err != nil {
		return nil, "", err
	}
	endpoint, err := config.ParseDatabaseURL(dbURL)
	if err != nil {
		return nil, "", err
	}

	files, err := parser.ParseQueries(cfg.GetQueries(&flags))
	if err != nil {
		return nil, "", err
	}
	queryCount := len(parser.AllQueries(files))
	if queryCount == 0 {
		return nil, "", fmt.Errorf("no annotated queries found in %s", cfg.GetQueries(&flags))
	}

	fmt.Printf("Connecting to %s:%d...\n", endpoint.Host, endpoint.Port)
	conn, err := pgconn.Connect(endpoint)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = conn.Close() }()

	fmt.Printf("Introspecting %d queries...\n", queryCount)
	typed, err := introspect.DescribeQueries(conn, files)
	if err != nil {
		return nil, "", err
	}

	generator, err := codegen.Get("go")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get generator: %w (available: %v)", err, codegen.Languages())
	}

	rendered, err := generator.Render(typed, cfg.GetPackage(&flags))
	if err != nil {
		return nil, "", fmt.Errorf("failed to render bindings: %w", err)
	}

	return rendered, cfg.GetOut(&flags), nil
}

func sortedFileNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
