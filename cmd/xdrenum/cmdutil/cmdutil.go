// Package cmdutil holds state and helpers shared by the xdrenum commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/algebnaly/xdr-brk-enum/internal/cli/output"
	"github.com/algebnaly/xdr-brk-enum/internal/logger"
	"github.com/algebnaly/xdr-brk-enum/pkg/config"
	"github.com/algebnaly/xdr-brk-enum/pkg/metrics"
	prommetrics "github.com/algebnaly/xdr-brk-enum/pkg/metrics/prometheus"
	"github.com/algebnaly/xdr-brk-enum/pkg/schema"
	"github.com/algebnaly/xdr-brk-enum/pkg/union"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// GlobalFlags holds the values of the root command's persistent flags.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	NoColor    bool
	LogLevel   string
}

// Flags is synced from the root command before any subcommand runs.
var Flags = &GlobalFlags{}

// Session is a loaded configuration with every union resolved.
type Session struct {
	Config *config.Config
	Schema *schema.Schema

	// Metrics is nil unless metrics are enabled in the configuration.
	Metrics *prometheus.Registry
}

// Load reads the configuration named by Flags.ConfigFile, initializes
// logging and metrics from it, and builds its unions. Logs configured for
// stderr go to the command's error stream.
func Load(cmd *cobra.Command) (*Session, error) {
	cfg, err := config.MustLoad(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	if Flags.LogLevel != "" {
		cfg.Logging.Level = strings.ToUpper(Flags.LogLevel)
	}
	if err := InitLogger(cfg, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}

	s := &Session{Config: cfg}

	var opts []union.ResolveOption
	if cfg.Metrics.Enabled {
		// Each session starts from an empty registry.
		metrics.Reset()
		s.Metrics = metrics.InitRegistry()
		opts = append(opts, union.WithMetrics(prommetrics.NewUnionMetrics(s.Metrics)))
	}

	s.Schema, err = schema.Build(cfg, opts...)
	if err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded",
		logger.ConfigPath(Flags.ConfigFile),
		"unions", len(cfg.Unions),
		"constants", len(cfg.Constants))
	return s, nil
}

// FlushMetrics writes the collected metrics to w in the Prometheus text
// format. It does nothing when metrics are disabled.
func (s *Session) FlushMetrics(w io.Writer) error {
	if s == nil || s.Metrics == nil {
		return nil
	}
	return metrics.WriteText(w, s.Metrics)
}

// InitLogger initializes the structured logger from configuration. The
// "stderr" output is written to stderr.
func InitLogger(cfg *config.Config, stderr io.Writer) error {
	if strings.EqualFold(cfg.Logging.Output, "stderr") {
		color := !Flags.NoColor && isTerminal(stderr)
		logger.InitWithWriter(stderr, cfg.Logging.Level, cfg.Logging.Format, color)
		return nil
	}

	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetPrinter returns a printer writing to the command's output in the
// format chosen with --output.
func GetPrinter(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	w := cmd.OutOrStdout()
	return output.NewPrinter(w, format, !Flags.NoColor && isTerminal(w)), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
