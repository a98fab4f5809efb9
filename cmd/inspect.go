package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stencilkit/stencil/internal/scaffold"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:     "inspect <template>",
	Aliases: []string{"i"},
	Short:   "Show a template's variable contract",
	Long: `Inspect resolves a template's inheritance chain without rendering it and
reports which variables a caller must supply and which may be omitted.

Examples:
  stencil inspect dto_python.py.j2
  stencil inspect design_doc.md.j2 -f json`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "text", "output format (text, json)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	pipeline := scaffold.New(engine, scaffold.WithLogger(logger))
	schema, version, err := pipeline.Introspect(args[0])
	if err != nil {
		return err
	}

	switch inspectFormat {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"template": args[0],
			"version":  version,
			"chain":    schema.InheritanceChain,
			"required": schema.Required,
			"optional": schema.Optional,
		})
	case "text":
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Template: %s\n", args[0])
		fmt.Fprintf(out, "Version:  %s\n", version)
		fmt.Fprintf(out, "Chain:    %s\n", strings.Join(schema.InheritanceChain, " -> "))
		fmt.Fprintf(out, "Required: %s\n", joinOrDash(schema.Required))
		fmt.Fprintf(out, "Optional: %s\n", joinOrDash(schema.Optional))
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", inspectFormat)
	}
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}

	return strings.Join(names, ", ")
}
