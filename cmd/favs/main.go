package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/favs/internal/auth"
	"github.com/nikbrunner/favs/internal/config"
	"github.com/nikbrunner/favs/internal/favorites"
	"github.com/nikbrunner/favs/internal/gateway"
	"github.com/nikbrunner/favs/internal/gateway/local"
	"github.com/nikbrunner/favs/internal/gateway/remote"
	"github.com/nikbrunner/favs/internal/logger"
	"github.com/nikbrunner/favs/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dataPath   string
	gatewayURL string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "favs",
		Short:         "Organize saved places into folders",
		Long:          "favs keeps your saved places in folders, locally or synced with a favorites service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/favs/config.json)")
	flags.StringVar(&opts.dataPath, "data", "", "local data file, .db for SQLite or .json")
	flags.StringVar(&opts.gatewayURL, "gateway", "", "favorites service URL; empty uses local data")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "log requests and debug output")

	root.AddCommand(
		newFoldersCmd(opts),
		newFolderCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newRmCmd(opts),
		newFindCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newCheckCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
	)
	return root
}

// env is the wired application for one command run.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	ctl      *favorites.Controller
	closeFns []func() error
}

// Close releases resources in reverse order of opening, so the log file
// closes last.
func (e *env) Close() error {
	var first error
	for i := len(e.closeFns) - 1; i >= 0; i-- {
		if err := e.closeFns[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, string, error) {
	path := o.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	if o.dataPath != "" {
		cfg.DataPath = o.dataPath
	}
	if o.gatewayURL != "" {
		cfg.GatewayURL = o.gatewayURL
	}
	if o.debug {
		cfg.Debug = true
		cfg.LogLevel = zerolog.DebugLevel.String()
	}
	return cfg, path, nil
}

// open wires config, logging, the gateway and the controller. When the TUI
// owns the terminal, logs go to a file next to the config.
func (o *rootOptions) open(forTUI bool) (_ *env, err error) {
	cfg, cfgPath, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if forTUI && cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(filepath.Dir(cfgPath), "favs.log")
	}
	log, logCloser := logger.New(logger.Options{Service: "favs", Level: cfg.LogLevel, File: cfg.LogFile})

	e := &env{cfg: cfg, log: log, closeFns: []func() error{logCloser.Close}}
	defer func() {
		if err != nil {
			_ = e.Close()
		}
	}()

	var (
		gw    gateway.Gateway
		authn favorites.Authenticator
	)
	if cfg.Remote() {
		credPath, err := auth.DefaultPath()
		if err != nil {
			return nil, err
		}
		creds, err := auth.Load(credPath)
		if err != nil {
			return nil, err
		}
		session := auth.NewSession(creds, time.Now)
		client, err := remote.New(cfg.GatewayURL, session.Token(),
			remote.WithHTTPTimeout(cfg.HTTPTimeout.Duration),
			remote.WithRetry(cfg.MaxRetries),
			remote.WithLogger(log),
			remote.WithDebugLogging(cfg.Debug),
		)
		if err != nil {
			return nil, err
		}
		gw, authn = client, session
		log.Debug().Str("gateway", cfg.GatewayURL).Bool("signed_in", session.Authenticated()).Msg("using remote gateway")
	} else {
		s, err := storage.Open(cfg.DataPath)
		if err != nil {
			return nil, fmt.Errorf("open data: %w", err)
		}
		e.closeFns = append(e.closeFns, func() error { return storage.Close(s) })
		lg, err := local.New(s)
		if err != nil {
			return nil, fmt.Errorf("load data: %w", err)
		}
		gw, authn = lg, auth.Static(true)
		log.Debug().Str("data", cfg.DataPath).Msg("using local data")
	}

	e.ctl = favorites.New(favorites.Params{
		Gateway:  gw,
		Auth:     authn,
		Logger:   log,
		PageSize: cfg.PageSize,
	})
	return e, nil
}

// withEnv opens the environment for a command and closes it afterwards.
func withEnv(opts *rootOptions, fn func(e *env) error) error {
	e, err := opts.open(false)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}
