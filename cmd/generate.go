package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	stencilerrors "github.com/stencilkit/stencil/internal/errors"
	"github.com/stencilkit/stencil/internal/scaffold"
)

var (
	generateOutput   string
	generateType     string
	generateVars     []string
	generateVarsFile string
	generateDryRun   bool
)

var generateCmd = &cobra.Command{
	Use:     "generate <template>",
	Aliases: []string{"g"},
	Short:   "Scaffold an artifact from a template",
	Long: `Generate renders a template through its full inheritance chain, validates
the supplied variables against the template's contract, and writes the
artifact with a provenance header.

Variables are given as --var key=value pairs, or structured via a YAML file
with --vars-file for lists and nested values.

Examples:
  stencil generate dto_python.py.j2 -o out/order.py --var event_name=order_created --vars-file fields.yml
  stencil generate design_doc.md.j2 -o docs/payments.md --var "title=Payments v2"
  stencil generate design_doc.md.j2 --dry-run --var title=Draft`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output path of the generated artifact")
	generateCmd.Flags().StringVarP(&generateType, "type", "t", "", "artifact type recorded in the provenance header")
	generateCmd.Flags().StringArrayVar(&generateVars, "var", nil, "template variable as key=value (repeatable)")
	generateCmd.Flags().StringVar(&generateVarsFile, "vars-file", "", "YAML file of template variables")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the artifact to stdout instead of writing it")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	variables, err := collectVariables(generateVarsFile, generateVars)
	if err != nil {
		return err
	}

	outputPath := generateOutput
	if outputPath != "" && !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(cfg.Output.Dir, outputPath)
	}
	if generateDryRun {
		outputPath = ""
	}

	pipeline := scaffold.New(engine, scaffold.WithLogger(logger))
	result, err := pipeline.Generate(cmd.Context(), scaffold.Request{
		Template:     args[0],
		ArtifactType: generateType,
		OutputPath:   outputPath,
		Variables:    variables,
	})
	if err != nil {
		return err
	}

	if generateDryRun || outputPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Content)
		return nil
	}

	if err := pipeline.WriteFile(cmd.Context(), result); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %s (template %s, version %s)\n",
		outputPath, result.Header.TemplateID, result.Header.Version)

	return nil
}

// collectVariables merges a YAML vars file with --var overrides; flag values
// win on conflict.
func collectVariables(varsFile string, pairs []string) (map[string]interface{}, error) {
	variables := make(map[string]interface{})

	if varsFile != "" {
		data, err := os.ReadFile(varsFile)
		if err != nil {
			return nil, stencilerrors.NewIOError(stencilerrors.ErrCodeIORead, "failed to read vars file "+varsFile, err)
		}
		if err := yaml.Unmarshal(data, &variables); err != nil {
			return nil, stencilerrors.NewConfigError(
				stencilerrors.ErrCodeConfigSyntax,
				"vars file has invalid syntax",
			).WithContext("cause", err.Error())
		}
	}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, stencilerrors.NewConfigError(
				stencilerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("malformed --var %q, expected key=value", pair),
			)
		}
		variables[key] = value
	}

	return variables, nil
}
