package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportOut string

var runsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Save a run's findings as CSV",
	Long: `Export downloads the findings CSV for a run and writes it to
run-<id>.csv in the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunsExport,
}

func init() {
	runsExportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "Directory to write the CSV into")
	runsCmd.AddCommand(runsExportCmd)
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	var id string
	if len(args) > 0 {
		id = args[0]
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	saver := &fileSaver{dir: exportOut}
	if err := s.client.ExportRunCSV(cmd.Context(), id, saver); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "saved %s (%d bytes)", saver.path, saver.n)
	return nil
}

// fileSaver writes exports into dir.
type fileSaver struct {
	dir  string
	path string
	n    int
}

func (f *fileSaver) Save(_ context.Context, data []byte, filename string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(f.dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	f.path, f.n = path, len(data)
	return nil
}
