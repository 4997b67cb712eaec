package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/oas2client/internal/client"
	"github.com/mark3labs/oas2client/internal/emitter/balemitter"
	genspec "github.com/mark3labs/oas2client/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input      string
	Out        string
	Tags       []string
	Operations []string
	ServerVars map[string]string
	FileName   string
	EmitModel  bool
	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{FileName: balemitter.DefaultFileName}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Ballerina HTTP client from an OpenAPI/Swagger document",
		Long: "Generate a Ballerina HTTP client from an OpenAPI/Swagger document. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  oas2client generate --input petstore.yaml --out ./petstore
  oas2client generate --input spec.yaml --tags pet,store --operations getUserByName
  oas2client --config oas2client.yaml generate --server-var region=us --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (derived from spec title when omitted)")
	flags.StringSlice("tags", nil, "Only include operations with these tags")
	flags.StringSlice("operations", nil, "Only include operations with these operation ids")
	flags.StringToString("server-var", nil, "Override a server variable (name=value)")
	flags.String("file-name", "", "Name of the generated client file (default client.bal)")
	flags.Bool("emit-model", false, "Also write the client model as client_model.json")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

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

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("tags") {
		value, err := flags.GetStringSlice("tags")
		if err != nil {
			return err
		}
		cfg.Tags = sanitizeList(value)
	}
	if flags.Changed("operations") {
		value, err := flags.GetStringSlice("operations")
		if err != nil {
			return err
		}
		cfg.Operations = sanitizeList(value)
	}
	if flags.Changed("server-var") {
		value, err := flags.GetStringToString("server-var")
		if err != nil {
			return err
		}
		// Flags refine config values per variable.
		if cfg.ServerVars == nil {
			cfg.ServerVars = map[string]string{}
		}
		for k, v := range value {
			cfg.ServerVars[k] = v
		}
	}
	if flags.Changed("file-name") {
		value, err := flags.GetString("file-name")
		if err != nil {
			return err
		}
		cfg.FileName = strings.TrimSpace(value)
	}
	if flags.Changed("emit-model") {
		value, err := flags.GetBool("emit-model")
		if err != nil {
			return err
		}
		cfg.EmitModel = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.FileName = strings.TrimSpace(c.FileName)
	if c.FileName == "" {
		c.FileName = balemitter.DefaultFileName
	}
	c.Tags = sanitizeList(c.Tags)
	c.Operations = sanitizeList(c.Operations)
	if len(c.ServerVars) > 0 {
		vars := make(map[string]string, len(c.ServerVars))
		for k, v := range c.ServerVars {
			vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		c.ServerVars = vars
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	for k := range c.ServerVars {
		if k == "" {
			return newUsageError("generate: --server-var needs a variable name (name=value)")
		}
	}
	if strings.ContainsAny(c.FileName, `/\`) {
		return newUsageError(fmt.Sprintf("generate: --file-name %q must be a plain file name", c.FileName))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := newLogger(cfg.Verbose)

	// 1) Load the spec (file or http/https URL) with validation and conversion
	doc, err := genspec.Load(ctx, cfg.Input, genspec.WithLogger(logger))
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Assemble the client model with operation filters
	model, err := client.Assemble(doc,
		client.NewFilter(cfg.Tags, cfg.Operations),
		client.WithTypeMapper(balemitter.Types),
		client.WithLogger(logger),
		client.WithServerVariables(cfg.ServerVars),
	)
	if err != nil {
		var re *client.ResolutionError
		if errors.As(err, &re) || errors.Is(err, client.ErrMissingServer) {
			return newUsageError(fmt.Sprintf("generate: %v\nHint: check the servers section or pass --server-var name=value.", err))
		}
		return fmt.Errorf("assemble client: %w", err)
	}
	if len(model.Methods) == 0 {
		logger.Warn("no operations matched; the client will have no remote functions",
			"tags", cfg.Tags, "operations", cfg.Operations)
	}

	// 3) Derive the output directory from the spec title when omitted
	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(doc.Title)
		if outDir == "" {
			outDir = "client"
		}
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 4) Render and write
	res, err := balemitter.Emit(ctx, model, balemitter.Options{
		OutDir:    outDir,
		FileName:  cfg.FileName,
		EmitModel: cfg.EmitModel,
		Force:     cfg.Force,
		DryRun:    cfg.DryRun,
		Logger:    logger,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	paths := make([]string, 0, len(res.Planned))
	for _, p := range res.Planned {
		paths = append(paths, p.RelPath)
	}
	if cfg.DryRun {
		printPlan(absOut, len(res.Planned), paths)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Generated %d remote functions into %s\n", len(model.Methods), filepath.Join(absOut, res.FileName))
	return nil
}

// newLogger writes text logs to stderr: debug with --verbose, warnings otherwise.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
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

func wrapOutputError(err error, outDir string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

// deriveOutDir turns a spec title such as "Swagger Petstore" into
// "swagger-petstore".
func deriveOutDir(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return ""
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ", "\\", " ")
	t = repl.Replace(t)
	var parts []string
	for _, field := range strings.Fields(t) {
		var b strings.Builder
		for _, r := range field {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
				b.WriteRune(r)
			}
		}
		if s := strings.Trim(b.String(), "-"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

func sanitizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
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

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		switch normalizeKey(key) {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "tags":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Tags = sanitizeList(list)
		case "operations":
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Operations = sanitizeList(list)
		case "servervars":
			vars, err := valueAsStringMap(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ServerVars = vars
		case "filename":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.FileName = str
		case "emitmodel":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.EmitModel = val
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
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

// valueAsStringMap accepts a mapping of scalars or a "k=v,k2=v2" string.
func valueAsStringMap(v any) (map[string]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		out := map[string]string{}
		for _, pair := range splitAndTrim(val) {
			k, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("expected name=value, got %q", pair)
			}
			out[strings.TrimSpace(k)] = strings.TrimSpace(value)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(val))
		for k, elem := range val {
			switch e := elem.(type) {
			case string:
				out[k] = strings.TrimSpace(e)
			case int, int64, float64, bool:
				out[k] = fmt.Sprint(e)
			case nil:
				out[k] = ""
			default:
				return nil, fmt.Errorf("key %q: expected scalar, got %T", k, elem)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected mapping or name=value list, got %T", v)
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
