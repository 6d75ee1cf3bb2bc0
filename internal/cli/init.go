package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "swagger2rtk.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2rtk configuration file",
		Long:  "Scaffold a commented swagger2rtk configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(_ context.Context, cfg *InitConfig) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Use it with: swagger2rtk --config %s generate\n", out)
	}
	return nil
}

// sampleConfigYAML documents every key the generate command accepts.
const sampleConfigYAML = `# swagger2rtk configuration (YAML)
# All fields are optional. Precedence: flags > this file > environment (.env) > defaults.

# Path or URL to the Swagger/OpenAPI document (env SWAGGER_URL).
# input: http://localhost:3000/api-docs-json

# Basic auth for fetching the document (env SWAGGER_AUTH_USERNAME / SWAGGER_AUTH_PASSWORD).
# authUsername: docs
# authPassword: secret

# HTTP timeout for fetching the document.
# timeout: 30s

# Output directory for generated modules (env CODEGEN_OUTPUT_DIR).
# out: src/store/api

# Module exporting the empty API and its export name
# (env CODEGEN_EMPTY_API_PATH / CODEGEN_EMPTY_API_IMPORT).
# baseClientPath: src/store/empty-api.ts
# baseClientExport: emptySplitApi

# Re-export generated React hooks from each slice (env CODEGEN_HOOKS).
# hooks: true

# Only generate slices for these tags (comma-separated or list).
# includeTags: [Users, Orders]

# Skip slices for these tags (comma-separated or list).
# excludeTags: [Internal]

# Preview planned outputs without writing files.
# dryRun: false

# Enable verbose logging.
# verbose: false
`
