// Package cli implements the ghnet command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pierre-ernst/ghnet/internal/config"
	"github.com/pierre-ernst/ghnet/pkg/buildinfo"
	"github.com/pierre-ernst/ghnet/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "ghnet"

	// configKeyAnnotation marks flags that override a configuration key.
	configKeyAnnotation = "ghnet_config_key"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	v     *viper.Viper
	cfg   *config.Config
	flags rootFlags
}

type rootFlags struct {
	configPath string
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		v:      config.New(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ghnet explores who depends on a GitHub repository",
		Long: `ghnet reads GitHub's dependency graph: the packages a repository publishes,
how many repositories depend on it, and which of those dependents are popular
enough to matter.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			hooks := newLogHooks(c.Logger)
			observability.SetScanHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default ~/.config/ghnet/config.toml)")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the response cache")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "ignore cached responses and fetch again")
	pf.String("token", "", "GitHub token (default $GITHUB_TOKEN)")
	bindConfigKey(pf, "token", "github.token")

	root.AddCommand(c.ownerCommand())
	root.AddCommand(c.packagesCommand())
	root.AddCommand(c.countCommand())
	root.AddCommand(c.dependentsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// bindConfigKey marks flag name as an override for the configuration key.
func bindConfigKey(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, configKeyAnnotation, []string{key})
}

// loadConfig binds the annotated flags of cmd to their keys and loads the
// configuration.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || bindErr != nil {
			return
		}
		bindErr = c.v.BindPFlag(keys[0], f)
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.Load(c.v, c.flags.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("Configuration loaded",
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend,
		"authenticated", cfg.GitHub.Token != "")
	return nil
}

// config returns the loaded configuration, or the defaults when commands
// run without the root pre-run hook.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/ghnet/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
