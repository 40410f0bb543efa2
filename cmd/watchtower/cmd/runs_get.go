package cmd

import (
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/kieranyoussef/finops-watchtower/internal/services/dashboard"
)

var runsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a run and its findings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRunsGet,
}

func init() {
	runsCmd.AddCommand(runsGetCmd)
}

func runRunsGet(cmd *cobra.Command, args []string) error {
	var id string
	if len(args) > 0 {
		id = args[0]
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	st := dashboard.LoadDetail(cmd.Context(), s.client, id)
	if st.Err != nil {
		return st.Err
	}
	r := st.Run

	cmd.Printf("Run:      %s\n", color.Bold.Sprint(r.ID))
	cmd.Printf("Created:  %s\n", fmtTime(r.CreatedAt))
	cmd.Printf("Source:   %s\n", orDash(r.Source))
	cmd.Printf("Rows:     %s\n", fmtCount(r.RowCount))
	if len(r.Coverage) > 0 {
		cmd.Printf("Coverage: %s\n", strings.Join(r.Coverage, ", "))
	}

	if st.ShowExplanation() {
		cmd.Printf("\nExplanation:\n  %s\n", strings.ReplaceAll(strings.TrimSpace(r.Explanation), "\n", "\n  "))
	}

	findings := st.Findings()
	cmd.Printf("\nFindings (%d):\n", len(findings))
	for _, f := range findings {
		cmd.Printf("  #%d %s: %s\n", f.Index, color.Yellow.Sprint(f.Type), f.Reason)
		if f.Row != "" {
			cmd.Printf("     %s\n", strings.ReplaceAll(f.Row, "\n", "\n     "))
		}
	}
	return nil
}
