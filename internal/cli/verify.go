package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pendergraft/solverify/pkg/client"
)

func createVerifyCmd() *cobra.Command {
	var contract string
	var filePath string
	var creationInput string
	var creationInputFile string
	var deployed string
	var deployedFile string
	var outputs []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify on-chain bytecode against compiler output",
		Long: `Submit a verification comparing on-chain bytecode with freshly
compiled output.

The creation transaction input and deployed bytecode are compared
against each compiler output candidate, excluding constructor
arguments and classifying metadata-only differences as partial.

EXAMPLES:
  # Verify with inline bytecode and one compiler output file
  solverify verify \
    --contract Owner \
    --creation-input 0x6080... \
    --deployed 0x6080... \
    --output 0.8.14=out/solc-0.8.14.json

  # Read bytecode from files, try several compiler versions
  solverify verify \
    --contract Owner \
    --creation-input-file tx-input.hex \
    --deployed-file deployed.hex \
    --output 0.8.14=out/solc-0.8.14.json \
    --output 0.8.13=out/solc-0.8.13.json

  # Contract name and outputs from solverify.toml
  solverify verify --creation-input-file tx-input.hex --deployed-file deployed.hex
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(verifyInputs{
				contract:          contract,
				filePath:          filePath,
				creationInput:     creationInput,
				creationInputFile: creationInputFile,
				deployed:          deployed,
				deployedFile:      deployedFile,
				outputs:           outputs,
				jsonOutput:        jsonOutput,
			})
		},
	}

	cmd.Flags().StringVar(&contract, "contract", "", "contract name (default from config)")
	cmd.Flags().StringVar(&filePath, "file", "", "restrict lookup to one source file path in the compiler output")
	cmd.Flags().StringVar(&creationInput, "creation-input", "", "creation transaction input as hex")
	cmd.Flags().StringVar(&creationInputFile, "creation-input-file", "", "file containing the creation transaction input hex")
	cmd.Flags().StringVar(&deployed, "deployed", "", "deployed bytecode as hex")
	cmd.Flags().StringVar(&deployedFile, "deployed-file", "", "file containing the deployed bytecode hex")
	cmd.Flags().StringArrayVar(&outputs, "output", nil, "compiler output candidate as version=path (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

type verifyInputs struct {
	contract          string
	filePath          string
	creationInput     string
	creationInputFile string
	deployed          string
	deployedFile      string
	outputs           []string
	jsonOutput        bool
}

func runVerify(in verifyInputs) error {
	cfg := loadProjectConfigSilent()

	contract := in.contract
	if contract == "" && cfg != nil {
		contract = cfg.Contract
	}
	if contract == "" {
		return fmt.Errorf("contract name required (use --contract or set it in solverify.toml)")
	}

	filePath := in.filePath
	if filePath == "" && cfg != nil {
		filePath = cfg.FilePath
	}

	creationInput, err := resolveHexInput(in.creationInput, in.creationInputFile)
	if err != nil {
		return fmt.Errorf("creation tx input: %w", err)
	}
	if creationInput == "" {
		return fmt.Errorf("creation tx input required (use --creation-input or --creation-input-file)")
	}

	deployed, err := resolveHexInput(in.deployed, in.deployedFile)
	if err != nil {
		return fmt.Errorf("deployed bytecode: %w", err)
	}
	if deployed == "" {
		return fmt.Errorf("deployed bytecode required (use --deployed or --deployed-file)")
	}

	candidates, err := resolveCandidates(in.outputs, cfg)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return fmt.Errorf("at least one compiler output required (use --output version=path or set outputs in solverify.toml)")
	}

	if !in.jsonOutput {
		fmt.Printf("🔍 Verifying %s against %d compiler output(s)\n", contract, len(candidates))
	}

	c := client.New(getServer(), getAPIKey())
	result, err := c.Verify(context.Background(), client.VerifyRequest{
		ContractName:     contract,
		FilePath:         filePath,
		CreationTxInput:  creationInput,
		DeployedBytecode: deployed,
		Candidates:       candidates,
	})
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if in.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printVerifyResult(result)
	return nil
}

func printVerifyResult(result *client.VerifyResult) {
	fmt.Println()

	switch result.Status {
	case "full":
		fmt.Println("✅ VERIFIED - Full match")
		fmt.Println("   Bytecode exactly matches the compiler output (including metadata)")
	case "partial":
		fmt.Println("✅ VERIFIED - Partial match")
		fmt.Println("   Executable code matches, but metadata differs")
		fmt.Println("   (This can happen with different source paths or comments)")
	case "none":
		fmt.Println("❌ NOT VERIFIED - No match")
		fmt.Println("   On-chain bytecode does not match any compiler output")
	default:
		fmt.Println("❌ NOT VERIFIED")
	}

	if result.CompilerVersion != "" {
		fmt.Printf("   Compiler: %s\n", result.CompilerVersion)
	}
	if result.ConstructorArgs != "" {
		fmt.Printf("   Constructor args: %s\n", result.ConstructorArgs)
	}
	if result.Message != "" {
		fmt.Printf("   %s\n", result.Message)
	}

	if len(result.Attempts) > 1 {
		fmt.Println()
		fmt.Println("   Attempts:")
		for _, a := range result.Attempts {
			if a.Message != "" {
				fmt.Printf("     %s: %s (%s)\n", a.CompilerVersion, a.Status, a.Message)
			} else {
				fmt.Printf("     %s: %s\n", a.CompilerVersion, a.Status)
			}
		}
	}

	if result.ID != "" {
		fmt.Println()
		fmt.Printf("   Record: %s\n", result.ID)
		fmt.Printf("   Check later with: solverify status %s\n", result.ID)
	}
}

// resolveHexInput returns the inline value, or the trimmed contents of the
// file when the inline value is empty.
func resolveHexInput(inline, file string) (string, error) {
	if inline != "" {
		return strings.TrimSpace(inline), nil
	}
	if file == "" {
		return "", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// resolveCandidates builds the candidate list from --output flags, falling
// back to the project config outputs.
func resolveCandidates(outputs []string, cfg *ProjectConfig) ([]client.Candidate, error) {
	refs := make([]OutputRef, 0, len(outputs))
	for _, spec := range outputs {
		version, path, err := parseOutputSpec(spec)
		if err != nil {
			return nil, err
		}
		refs = append(refs, OutputRef{CompilerVersion: version, Path: path})
	}
	if len(refs) == 0 && cfg != nil {
		refs = cfg.Outputs
	}

	candidates := make([]client.Candidate, 0, len(refs))
	for _, ref := range refs {
		data, err := os.ReadFile(ref.Path)
		if err != nil {
			return nil, fmt.Errorf("reading compiler output %s: %w", ref.Path, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("compiler output %s is not valid JSON", ref.Path)
		}
		candidates = append(candidates, client.Candidate{
			CompilerVersion: ref.CompilerVersion,
			Output:          json.RawMessage(data),
		})
	}
	return candidates, nil
}

// parseOutputSpec parses "version=path"
func parseOutputSpec(spec string) (version, path string, err error) {
	parts := strings.SplitN(spec, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid output spec %q: must be version=path", spec)
	}
	return parts[0], parts[1], nil
}
