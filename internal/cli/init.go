package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/krr2020/taskflow-ai-sub003/internal/core"
	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
	"github.com/spf13/cobra"
)

// templateVersion identifies the scaffold layout written by init, recorded
// in .taskflow/.version so upgrades can detect customized installs.
const templateVersion = "1.0.0"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold TaskFlow in the current project",
	Long: `Create the tasks/ directory, the .taskflow/ reference documents (per-status
guidance and an empty retrospective ledger), and a default
taskflow.config.json. Existing files are left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base := BasePath
		if base == "" {
			base = "."
		}

		dirs := []string{
			filepath.Join(base, "tasks"),
			filepath.Join(base, "docs"),
			filepath.Join(base, ".taskflow", "ref"),
			filepath.Join(base, ".taskflow", "logs"),
		}
		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}

		if err := writeInitFile(filepath.Join(base, "taskflow.config.json"), defaultConfigJSON()); err != nil {
			return err
		}

		// Per-status guidance documents, pre-filled with the built-in text so
		// projects start with something editable.
		reg := core.NewGuidanceRegistry(base)
		for _, status := range core.GuidanceStatuses() {
			text, err := reg.Guidance(status, "")
			if err != nil {
				return err
			}
			path := filepath.Join(base, ".taskflow", "ref", core.GuidanceDocName(status))
			if err := writeInitFile(path, []byte(text+"\n")); err != nil {
				return err
			}
		}

		// Empty retrospective ledger with header and id marker.
		ledgerPath := filepath.Join(base, ".taskflow", "ref", "retrospective.md")
		if err := writeInitFile(ledgerPath, emptyLedger()); err != nil {
			return err
		}

		version := models.VersionInfo{
			TemplateVersion: templateVersion,
			InstalledAt:     time.Now().UTC(),
		}
		versionData, err := json.MarshalIndent(&version, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling version info: %w", err)
		}
		versionData = append(versionData, '\n')
		if err := writeInitFile(filepath.Join(base, ".taskflow", ".version"), versionData); err != nil {
			return err
		}

		fmt.Println("TaskFlow initialized.")
		fmt.Println("\nNext steps:")
		fmt.Println("  - Edit taskflow.config.json to match your project's commands")
		fmt.Println("  - Run 'taskflow generate prd' to draft the planning documents")
		fmt.Println("  - Add features, stories, and tasks under tasks/")
		return nil
	},
}

// writeInitFile writes a scaffold file, refusing to clobber existing content
// unless --force was given.
func writeInitFile(path string, content []byte) error {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("skipping %s (exists; use --force to overwrite)\n", path)
			return nil
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func defaultConfigJSON() []byte {
	data, _ := json.MarshalIndent(core.DefaultConfig(), "", "  ")
	return append(data, '\n')
}

func emptyLedger() []byte {
	return []byte(`# Retrospective

Known error patterns and their fixes. Rows are appended by the validation
workflow; counts increase each time a pattern is seen again.

<!-- last-id: 0 -->

| ID | Category | Pattern | Solution | Count | Criticality |
|---|---|---|---|---|---|
`)
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing scaffold files")
	rootCmd.AddCommand(initCmd)
}
