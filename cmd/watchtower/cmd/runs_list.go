package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
	"github.com/kieranyoussef/finops-watchtower/internal/services/dashboard"
)

var (
	listLimit  int
	listCursor string
	listAll    bool
)

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List anomaly runs",
	Long: `List prints one page of runs, newest first as the API returns them.
Pass the printed cursor back with --cursor to see the next page, or use --all
to walk every page.

Example:
  watchtower runs list --limit 20
  watchtower runs list --all`,
	Args: cobra.NoArgs,
	RunE: runRunsList,
}

func init() {
	runsListCmd.Flags().IntVar(&listLimit, "limit", 0, "Page size (0 uses the configured page_size)")
	runsListCmd.Flags().StringVar(&listCursor, "cursor", "", "Cursor returned by a previous page")
	runsListCmd.Flags().BoolVar(&listAll, "all", false, "Fetch every page")
	runsCmd.AddCommand(runsListCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	limit := listLimit
	if limit <= 0 {
		limit = s.cfg.PageSize
	}

	if listAll {
		if listCursor != "" {
			return errors.New("--all and --cursor cannot be combined")
		}
		p := dashboard.NewPager(s.client, limit)
		if err := p.LoadFirst(cmd.Context()); err != nil {
			return err
		}
		for p.State().HasMore() {
			if err := p.LoadMore(cmd.Context()); err != nil {
				return err
			}
		}
		rs := p.State().Runs()
		printRuns(cmd, rs)
		cmd.Printf("%d run(s) across %d page(s)\n", len(rs), len(p.State().Pages))
		return nil
	}

	page, err := s.client.ListRuns(cmd.Context(), run.ListParams{Limit: limit, Cursor: listCursor})
	if err != nil {
		return err
	}
	printRuns(cmd, page.Runs)
	if page.HasNext() {
		cmd.Printf("\nnext cursor: %s\n", page.NextCursor)
	}
	return nil
}

func printRuns(cmd *cobra.Command, rs []run.Run) {
	if len(rs) == 0 {
		cmd.Println(dim("No runs."))
		return
	}
	writeTable(cmd.OutOrStdout(), []string{"ID", "CREATED", "SOURCE", "ROWS", "FINDINGS"}, runRows(rs))
}
