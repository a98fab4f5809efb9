package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stencilkit/stencil/internal/metadata"
	"github.com/stencilkit/stencil/internal/scaffold"
)

const starterConfig = `templates:
  root: templates
output:
  dir: .
metadata:
  schema: .stencil/metadata.yml
logging:
  level: info
  format: text
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a template root with the starter tier hierarchy",
	Long: `Init creates a project skeleton: the starter template set (a four-tier
inheritance hierarchy, a macro library, and two concrete leaves), the default
metadata schema, and a .stencil.yml project file. Existing files are never
overwritten.

Examples:
  stencil init              # Initialize the current directory
  stencil init my-project   # Initialize my-project/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	out := cmd.OutOrStdout()

	written, err := scaffold.WriteBuiltinTemplates(filepath.Join(dir, "templates"))
	if err != nil {
		return err
	}
	for _, rel := range written {
		fmt.Fprintf(out, "Created templates/%s\n", rel)
	}

	schemaPath := filepath.Join(dir, ".stencil", "metadata.yml")
	if err := writeIfAbsent(schemaPath, metadata.DefaultDocument()); err != nil {
		return err
	}

	configPath := filepath.Join(dir, ".stencil.yml")
	if err := writeIfAbsent(configPath, []byte(starterConfig)); err != nil {
		return err
	}

	fmt.Fprintf(out, "Initialized stencil project in %s\n", dir)
	return nil
}

func writeIfAbsent(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, content, 0o644)
}
