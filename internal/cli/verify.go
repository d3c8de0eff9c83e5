package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check generated bindings against the current database schema",
	Long: `Verify re-runs the generation pipeline without writing anything and
reports any drift between the bindings on disk and what the current
database schema would produce. Exits nonzero when they differ.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rendered, outDir, err := renderQueries()
		if err != nil {
			return err
		}

		var drift []string
		for _, name := range sortedFileNames(rendered) {
			onDisk, err := os.ReadFile(filepath.Join(outDir, name))
			if os.IsNotExist(err) {
				drift = append(drift, fmt.Sprintf("%s: missing", name))
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			if !bytes.Equal(onDisk, rendered[name]) {
				drift = append(drift, fmt.Sprintf("%s: differs", name))
			}
		}

		stale, err := staleFiles(outDir, rendered)
		if err != nil {
			return err
		}
		drift = append(drift, stale...)

		if len(drift) > 0 {
			for _, d := range drift {
				fmt.Fprintf(os.Stderr, "drift: %s\n", d)
			}
			return fmt.Errorf("%d files out of date, run pgbind generate", len(drift))
		}

		fmt.Printf("Verified %d files, no drift\n", len(rendered))
		return nil
	},
}

// staleFiles reports .go files in outDir that the pipeline no longer emits.
func staleFiles(outDir string, rendered map[string][]byte) ([]string, error) {
	entries, err := os.ReadDir(outDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var stale []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		if _, ok := rendered[entry.Name()]; !ok {
			stale = append(stale, fmt.Sprintf("%s: stale", entry.Name()))
		}
	}
	return stale, nil
}
