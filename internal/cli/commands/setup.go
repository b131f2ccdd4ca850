package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leapviz/internal/cli/config"
	"github.com/leapstack-labs/leapviz/internal/cli/output"
	"github.com/leapstack-labs/leapviz/internal/engine"
	"github.com/leapstack-labs/leapviz/internal/source"
	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	reg := prometheus.NewRegistry()
	eng, err := createEngine(cfg, logger, engine.NewMetrics(reg))
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		if cfg.MetricsTextfile != "" {
			if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, reg); err != nil {
				logger.Warn("failed to write metrics", "path", cfg.MetricsTextfile, "error", err)
			}
		}
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		StatePath:       config.DefaultStateFile,
		Owner:           config.DefaultOwner,
		OutputFormat:    config.DefaultOutput,
		BatchSize:       config.DefaultBatchSize,
		SampleSize:      config.DefaultSampleSize,
		DefaultPageSize: core.DefaultPageSize,
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger, metrics *engine.Metrics) (*engine.Engine, error) {
	// Ensure state directory exists
	if cfg.StatePath != ":memory:" {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	opener := &source.Opener{}
	if cfg.ObjectStore != nil && cfg.ObjectStore.Endpoint != "" {
		store, err := source.NewObjectStore(cfg.ObjectStore.Source())
		if err != nil {
			return nil, err
		}
		opener.Objects = store
	}

	return engine.New(engine.Config{
		StatePath:       cfg.StatePath,
		Logger:          logger,
		Metrics:         metrics,
		Opener:          opener,
		REST:            source.NewRESTClient(&http.Client{Timeout: cfg.REST.Timeout()}),
		BatchSize:       cfg.BatchSize,
		SampleSize:      cfg.SampleSize,
		DefaultPageSize: cfg.DefaultPageSize,
	})
}

// loadRequest decodes a YAML or JSON request file into dst. Keys may be
// snake_case or camelCase.
func loadRequest(path string, dst any) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied request file
	if os.IsNotExist(err) {
		return core.NotFoundf("request file %s not found", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read request file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return core.Wrap(core.KindInvalidArgument, err, "invalid request file "+path)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		MatchName: func(mapKey, fieldName string) bool {
			return strings.EqualFold(strings.ReplaceAll(mapKey, "_", ""), strings.ReplaceAll(fieldName, "_", ""))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build request decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return core.Wrap(core.KindInvalidArgument, err, "invalid request file "+path)
	}
	return nil
}

// parseFilter parses field:operator:value. The value may itself contain colons.
func parseFilter(s string) (core.FilterParameter, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return core.FilterParameter{}, core.InvalidArgumentf("invalid filter %q, expected field:operator[:value]", s)
	}
	f := core.FilterParameter{Field: parts[0], Operator: parts[1]}
	if len(parts) == 3 {
		f.Value = parts[2]
	}
	return f, nil
}

func parseFilters(specs []string) ([]core.FilterParameter, error) {
	filters := make([]core.FilterParameter, 0, len(specs))
	for _, s := range specs {
		f, err := parseFilter(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// parsePairs parses repeated key=value flags.
func parsePairs(flag string, specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(specs))
	for _, s := range specs {
		k, v, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, core.InvalidArgumentf("invalid --%s %q, expected key=value", flag, s)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}
