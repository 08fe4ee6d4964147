package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/krr2020/taskflow-ai-sub003/internal/ai"
	"github.com/spf13/cobra"
)

var (
	generateName        string
	generateDescription string
)

// generateOutputs maps document kinds to their output files under docs/.
var generateOutputs = map[ai.DocKind]string{
	ai.DocPRD:          "prd.md",
	ai.DocArchitecture: "architecture.md",
	ai.DocTasks:        "tasks.md",
}

var generateCmd = &cobra.Command{
	Use:   "generate <prd|architecture|tasks>",
	Short: "Generate a planning document",
	Long: `Generate a planning document into docs/. With an AI provider configured
the document is drafted from the project description (and the PRD and
architecture documents, when they exist); without one, a manual template is
written for you to fill in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Generator == nil {
			return fmt.Errorf("generator not initialized")
		}
		kind := ai.DocKind(args[0])
		outName, ok := generateOutputs[kind]
		if !ok {
			return fmt.Errorf("unknown document kind %q: must be prd, architecture, or tasks", args[0])
		}

		in := ai.GenerateInput{
			ProjectName: generateName,
			Description: generateDescription,
		}
		if in.ProjectName == "" {
			in.ProjectName = filepath.Base(BasePath)
		}
		docsDir := filepath.Join(BasePath, "docs")
		// Later documents build on earlier ones when they exist.
		if data, err := os.ReadFile(filepath.Join(docsDir, "prd.md")); err == nil {
			in.PRD = string(data)
		}
		if data, err := os.ReadFile(filepath.Join(docsDir, "architecture.md")); err == nil {
			in.Architecture = string(data)
		}

		doc, aiGenerated, err := Generator.Generate(cmd.Context(), kind, in)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(docsDir, 0o755); err != nil {
			return fmt.Errorf("creating docs directory: %w", err)
		}
		outPath := filepath.Join(docsDir, outName)
		if err := os.WriteFile(outPath, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}

		if aiGenerated {
			fmt.Printf("Generated %s.\n", outPath)
		} else {
			fmt.Printf("Wrote template to %s (no AI provider configured; fill it in by hand).\n", outPath)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateName, "name", "", "Project name (defaults to the directory name)")
	generateCmd.Flags().StringVar(&generateDescription, "description", "", "Short project description fed to the generator")
	rootCmd.AddCommand(generateCmd)
}
