package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pendergraft/solverify/pkg/client"
)

func createStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show a stored verification record",
		Long: `Show the stored outcome of a past verification.

EXAMPLES:
  solverify status 6f3a1c2e-...

  solverify status 6f3a1c2e-... --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runStatus(id string, jsonOutput bool) error {
	c := client.New(getServer(), getAPIKey())

	rec, err := c.GetVerification(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get verification: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Printf("Verification %s\n\n", rec.ID)
	fmt.Printf("  Contract: %s\n", rec.ContractName)
	if rec.FilePath != "" {
		fmt.Printf("  File:     %s\n", rec.FilePath)
	}
	fmt.Printf("  Status:   %s\n", rec.Status)
	if rec.CompilerVersion != "" {
		fmt.Printf("  Compiler: %s\n", rec.CompilerVersion)
	}
	if rec.ConstructorArgs != "" {
		fmt.Printf("  Constructor args: %s\n", rec.ConstructorArgs)
	}
	if rec.Message != "" {
		fmt.Printf("  Message:  %s\n", rec.Message)
	}
	fmt.Printf("  Created:  %s\n", rec.CreatedAt)

	return nil
}
