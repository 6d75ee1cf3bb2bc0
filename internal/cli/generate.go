package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2rtk/internal/emitter/rtkemitter"
	"github.com/mark3labs/swagger2rtk/internal/naming"
	"github.com/mark3labs/swagger2rtk/internal/pipeline"
)

const (
	defaultOut              = "src/store/api"
	defaultBaseClientPath   = "src/store/empty-api.ts"
	defaultBaseClientExport = "emptySplitApi"
	defaultTimeout          = 30 * time.Second
)

// Environment variables consulted after the .env file is loaded.
const (
	envInput            = "SWAGGER_URL"
	envAuthUsername     = "SWAGGER_AUTH_USERNAME"
	envAuthPassword     = "SWAGGER_AUTH_PASSWORD"
	envOut              = "CODEGEN_OUTPUT_DIR"
	envBaseClientPath   = "CODEGEN_EMPTY_API_PATH"
	envBaseClientExport = "CODEGEN_EMPTY_API_IMPORT"
	envHooks            = "CODEGEN_HOOKS"
)

// dotenvPath is loaded before reading the environment; a missing file is fine.
var dotenvPath = ".env"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, the environment, config file values, and CLI overrides.
type GenerateConfig struct {
	Input            string
	Out              string
	BaseClientPath   string
	BaseClientExport string
	Hooks            bool
	AuthUsername     string
	AuthPassword     string
	IncludeTags      []string
	ExcludeTags      []string
	Timeout          time.Duration
	ConfigPath       string
	DryRun           bool
	Verbose          bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Out:              defaultOut,
		BaseClientPath:   defaultBaseClientPath,
		BaseClientExport: defaultBaseClientExport,
		Hooks:            true,
		Timeout:          defaultTimeout,
	}
}

func (c *GenerateConfig) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		Input:            c.Input,
		AuthUsername:     c.AuthUsername,
		AuthPassword:     c.AuthPassword,
		Timeout:          c.Timeout,
		OutDir:           c.Out,
		BaseClientPath:   c.BaseClientPath,
		BaseClientExport: c.BaseClientExport,
		Hooks:            c.Hooks,
		IncludeTags:      c.IncludeTags,
		ExcludeTags:      c.ExcludeTags,
		DryRun:           c.DryRun,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate RTK Query slices from an OpenAPI/Swagger document",
		Long: "Generate types.ts, one <tag>.slice.ts per tag and index.ts from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, a config file, environment variables (.env is read), or defaults.",
		Example: strings.TrimSpace(`  swagger2rtk generate --input http://localhost:3000/api-docs-json
  SWAGGER_URL=./openapi.yaml swagger2rtk generate --out src/store/api --hooks=false
  swagger2rtk --config swagger2rtk.yaml generate --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	addSourceFlags(flags)
	flags.String("out", "", "Output directory for generated modules (default "+defaultOut+")")
	flags.String("base-client-path", "", "Module exporting the empty API (default "+defaultBaseClientPath+")")
	flags.String("base-client-export", "", "Export name of the empty API (default "+defaultBaseClientExport+")")
	flags.Bool("hooks", true, "Re-export generated React hooks from each slice")
	flags.StringSlice("include-tags", nil, "Only generate slices for these tags")
	flags.StringSlice("exclude-tags", nil, "Skip slices for these tags")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")

	return cmd
}

// addSourceFlags registers the flags that locate and fetch the document.
func addSourceFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document (env "+envInput+")")
	flags.String("auth-username", "", "Basic auth username for fetching the document (env "+envAuthUsername+")")
	flags.String("auth-password", "", "Basic auth password for fetching the document (env "+envAuthPassword+")")
	flags.Duration("timeout", defaultTimeout, "HTTP timeout for fetching the document")
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
		return nil, newUsageError(fmt.Sprintf("read %s: %v", dotenvPath, err))
	}
	if err := applyGenerateConfigFromEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyGenerateConfigFromEnv reads the environment layer. Empty values count
// as unset; hooks stay on unless the variable is exactly "false".
func applyGenerateConfigFromEnv(cfg *GenerateConfig, lookup func(string) (string, bool)) error {
	for name, dst := range map[string]*string{
		envInput:            &cfg.Input,
		envAuthUsername:     &cfg.AuthUsername,
		envAuthPassword:     &cfg.AuthPassword,
		envOut:              &cfg.Out,
		envBaseClientPath:   &cfg.BaseClientPath,
		envBaseClientExport: &cfg.BaseClientExport,
	} {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(envHooks); ok {
		cfg.Hooks = strings.TrimSpace(v) != "false"
	}
	return nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	for name, dst := range map[string]*string{
		"input":              &cfg.Input,
		"out":                &cfg.Out,
		"base-client-path":   &cfg.BaseClientPath,
		"base-client-export": &cfg.BaseClientExport,
		"auth-username":      &cfg.AuthUsername,
		"auth-password":      &cfg.AuthPassword,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	for name, dst := range map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = sanitizeTags(value)
	}
	for name, dst := range map[string]*bool{
		"hooks":   &cfg.Hooks,
		"dry-run": &cfg.DryRun,
		"verbose": &cfg.Verbose,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	if flags.Changed("timeout") {
		value, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.BaseClientPath = strings.TrimSpace(c.BaseClientPath)
	c.BaseClientExport = strings.TrimSpace(c.BaseClientExport)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag, config file or " + envInput + ")")
	}
	if c.Out == "" {
		return newUsageError("generate: --out must not be empty")
	}
	if c.BaseClientPath == "" {
		return newUsageError("generate: --base-client-path must not be empty")
	}
	if !naming.IsIdentifier(c.BaseClientExport) {
		return newUsageError(fmt.Sprintf("generate: --base-client-export %q is not a valid identifier", c.BaseClientExport))
	}
	if c.Timeout < 0 {
		return newUsageError("generate: --timeout must not be negative")
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	rep, err := pipeline.Run(ctx, cfg.pipelineConfig(), newLogger(cfg.Verbose))
	if err != nil {
		return describeError(err, absOut)
	}

	if rep.DryRun {
		paths := make([]string, 0, len(rep.Modules))
		for _, m := range rep.Modules {
			paths = append(paths, m.RelPath)
		}
		printPlan(rep.OutDir, len(rep.Modules), paths)
		for _, name := range rep.Removed {
			fmt.Fprintf(os.Stdout, "- would remove stale %s\n", name)
		}
		return nil
	}
	printSummary(rep)
	return nil
}

// newLogger writes structured diagnostics to stderr so stdout carries only
// the summary.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func printSummary(rep *pipeline.Report) {
	fmt.Fprintf(os.Stdout, "Got spec: %s %s\n", rep.Title, rep.Version)
	fmt.Fprintf(os.Stdout, "Found %d tag(s): %s\n", len(rep.Tags), strings.Join(rep.Tags, ", "))
	slices := 0
	for _, m := range rep.Modules {
		switch m.Kind {
		case rtkemitter.TypesModule:
			fmt.Fprintf(os.Stdout, "  %s (%d schemas)\n", m.RelPath, m.Count)
		case rtkemitter.SliceModule:
			slices++
			fmt.Fprintf(os.Stdout, "  %s (%d endpoints)\n", m.RelPath, m.Count)
		default:
			fmt.Fprintf(os.Stdout, "  %s\n", m.RelPath)
		}
	}
	for _, name := range rep.Removed {
		fmt.Fprintf(os.Stdout, "  removed stale %s\n", name)
	}
	fmt.Fprintf(os.Stdout, "\nDone! Generated %d slices + %s in %s\n", slices, rtkemitter.TypesFile, rep.OutDir)
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		var err error
		switch normalizeKey(key) {
		case "input":
			cfg.Input, err = valueAsString(value)
		case "out":
			cfg.Out, err = valueAsString(value)
		case "baseclientpath":
			cfg.BaseClientPath, err = valueAsString(value)
		case "baseclientexport":
			cfg.BaseClientExport, err = valueAsString(value)
		case "authusername":
			cfg.AuthUsername, err = valueAsString(value)
		case "authpassword":
			cfg.AuthPassword, err = valueAsString(value)
		case "hooks":
			cfg.Hooks, err = valueAsBool(value)
		case "includetags":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.IncludeTags = sanitizeTags(list)
		case "excludetags":
			var list []string
			list, err = valueAsStringSlice(value)
			cfg.ExcludeTags = sanitizeTags(list)
		case "timeout":
			cfg.Timeout, err = valueAsDuration(value)
		case "dryrun":
			cfg.DryRun, err = valueAsBool(value)
		case "verbose":
			cfg.Verbose, err = valueAsBool(value)
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		if err != nil {
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

// valueAsDuration accepts Go duration strings ("45s") or a whole number of
// seconds.
func valueAsDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case int:
		return time.Duration(val) * time.Second, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", val)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("expected duration, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
