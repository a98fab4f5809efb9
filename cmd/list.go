package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stencilkit/stencil/internal/registry"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List discovered templates",
	Long: `List all templates under the template root with the identity, tier, and
parent each declares in its documentation header.

Examples:
  stencil list                    # Table format
  stencil list -f json            # JSON output
  stencil list -f yaml            # YAML output`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json, yaml)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	reg := registry.New(cfg.Templates.Root)
	if err := reg.Scan(); err != nil {
		return err
	}
	templates := reg.List()

	switch listFormat {
	case "table":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tTIER\tEXTENDS\tDESCRIPTION")
		for _, t := range templates {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Name, t.ID, t.Tier, t.Extends, t.Description)
		}
		return w.Flush()
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	case "yaml":
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(templates)
	default:
		return fmt.Errorf("unsupported format: %s (supported: %s)", listFormat, strings.Join([]string{"table", "json", "yaml"}, ", "))
	}
}
