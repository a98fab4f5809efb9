package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stencilkit/stencil/internal/metadata"
)

var checkQuiet bool

var checkCmd = &cobra.Command{
	Use:     "check <path>...",
	Aliases: []string{"c"},
	Short:   "Validate provenance headers of generated files",
	Long: `Check parses the provenance header of each given file, or of every file
under each given directory, and validates it against the metadata schema.
Files that are not scaffolded are reported but do not fail the check;
malformed headers do.

Examples:
  stencil check out/
  stencil check out/order.py docs/payments.md
  stencil check -q out/           # Only report problems`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "only report malformed headers")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	schema, err := metadata.Shared(cfg.Metadata.Schema)
	if err != nil {
		return err
	}

	var checked, malformed int
	out := cmd.OutOrStdout()

	for _, arg := range args {
		err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			ext := filepath.Ext(path)
			if _, ok := metadata.SyntaxForExtension(ext); !ok {
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			checked++

			fields, err := schema.Parse(string(data), ext)
			switch {
			case err != nil:
				malformed++
				fmt.Fprintf(out, "FAIL  %s: %v\n", path, err)
			case fields == nil:
				if !checkQuiet {
					fmt.Fprintf(out, "SKIP  %s: not a scaffolded file\n", path)
				}
			default:
				if !checkQuiet {
					fmt.Fprintf(out, "OK    %s: template=%s version=%s\n", path, fields["template"], fields["version"])
				}
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	if malformed > 0 {
		return fmt.Errorf("%d of %d checked files have malformed provenance headers", malformed, checked)
	}
	if !checkQuiet {
		fmt.Fprintf(out, "Checked %d files, all headers valid\n", checked)
	}

	return nil
}
