package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kieranyoussef/finops-watchtower/internal/services/dashboard"
)

var (
	createFile    string
	createJSON    string
	createExplain bool
)

var runsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a new anomaly run",
	Long: `Create uploads a CSV file with --file, or sends a JSON array of row
objects with --json (a path, or - for stdin).

Example:
  watchtower runs create --file ledger.csv --explain
  echo '[{"vendor":"acme","amount":10}]' | watchtower runs create --json -`,
	Args: cobra.NoArgs,
	RunE: runRunsCreate,
}

func init() {
	runsCreateCmd.Flags().StringVar(&createFile, "file", "", "CSV file to upload")
	runsCreateCmd.Flags().StringVar(&createJSON, "json", "", "File holding a JSON array of rows, - for stdin")
	runsCreateCmd.Flags().BoolVar(&createExplain, "explain", false, "Ask the analyzer for a written explanation")
	runsCmd.AddCommand(runsCreateCmd)
}

func runRunsCreate(cmd *cobra.Command, args []string) error {
	if (createFile == "") == (createJSON == "") {
		return errors.New("exactly one of --file or --json is required")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	creator := dashboard.NewCreator(s.client).WithLogger(s.log)

	var id string
	if createFile != "" {
		id, err = createFromFile(cmd, creator, createFile)
	} else {
		id, err = createFromJSON(cmd, creator, createJSON)
	}
	if err != nil {
		return err
	}

	success(cmd.OutOrStdout(), "created run %s", id)
	return nil
}

func createFromFile(cmd *cobra.Command, c *dashboard.Creator, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", err
	}
	return c.SubmitFile(cmd.Context(), path, fi.Size(), f, createExplain)
}

func createFromJSON(cmd *cobra.Command, c *dashboard.Creator, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return c.SubmitJSON(cmd.Context(), string(data), createExplain)
}
