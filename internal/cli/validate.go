package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2rtk/internal/spec"
)

var validateRunner = runValidate

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a Swagger/OpenAPI document loads and validates",
		Long: "Load the document the same way generate does (file or URL, Swagger 2.0 converted to OpenAPI 3) " +
			"and run OpenAPI validation without writing anything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return validateRunner(cmd.Context(), cfg)
		},
	}
	addSourceFlags(cmd.Flags())
	return cmd
}

func runValidate(ctx context.Context, cfg *GenerateConfig) error {
	opts := []spec.Option{spec.WithBasicAuth(cfg.AuthUsername, cfg.AuthPassword)}
	if cfg.Timeout > 0 {
		opts = append(opts, spec.WithHTTPTimeout(cfg.Timeout))
	}
	if err := spec.Validate(ctx, cfg.Input, opts...); err != nil {
		return describeError(err, "")
	}
	fmt.Fprintf(os.Stdout, "OK: %s is a valid OpenAPI document\n", cfg.Input)
	return nil
}
