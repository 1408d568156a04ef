package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pendergraft/solverify/pkg/client"
)

func createListCmd() *cobra.Command {
	var limit int
	var jsonOutput bool
	var contract string
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List verification records",
		Long: `List stored verification records, newest first.

EXAMPLES:
  # List recent verifications
  solverify list

  # Filter by contract name
  solverify list --contract Owner

  # Only full matches
  solverify list --status full

  # Output as JSON
  solverify list --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(contract, status, limit, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of items to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&contract, "contract", "", "filter by contract name")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (full, partial, none, failed)")

	return cmd
}

func runList(contract, status string, limit int, jsonOutput bool) error {
	c := client.New(getServer(), getAPIKey())

	resp, err := c.ListVerifications(context.Background(), client.ListOptions{
		ContractName: contract,
		Status:       status,
		Limit:        limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list verifications: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"verifications": resp.Data,
			"count":         len(resp.Data),
			"hasMore":       resp.Pagination.HasMore,
			"nextCursor":    resp.Pagination.NextCursor,
		})
	}

	if len(resp.Data) == 0 {
		fmt.Println("No verifications found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCONTRACT\tSTATUS\tCOMPILER\tCREATED")
	for _, v := range resp.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", truncateID(v.ID), v.ContractName, v.Status, v.CompilerVersion, v.CreatedAt)
	}
	w.Flush()

	if resp.Pagination.HasMore {
		fmt.Printf("\n(showing %d records, more available)\n", len(resp.Data))
	}

	return nil
}

// truncateID shortens long record IDs for table display
func truncateID(id string) string {
	if len(id) > 12 {
		return id[:8] + "..."
	}
	return id
}
