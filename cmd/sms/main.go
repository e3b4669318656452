// Command sms is the Safety Management System client: the pre-flight
// checklist, risk evaluation submission and the locally cached history.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skysms.org/internal/api"
	"skysms.org/internal/auth"
	"skysms.org/internal/checklist"
	"skysms.org/internal/config"
	"skysms.org/internal/obs"
	"skysms.org/internal/prefs"
	"skysms.org/internal/safety"
	"skysms.org/internal/store"
)

// version and commit are set at build time via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

// app carries the wired services for one command invocation.
type app struct {
	cfg    config.Config
	log    *zap.Logger
	store  *store.Store
	prefs  *prefs.Store
	sess   *auth.Session
	client *api.Client
	auth   *auth.Service
	safety *safety.Service
	custom *checklist.CustomManager
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	log, err := obs.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	obs.Init()
	obs.InitBuildInfo(version, commit)

	pstore, err := prefs.Open(cfg.PrefsPath())
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.CachePath())
	if err != nil {
		return nil, err
	}
	sess := auth.NewSession(pstore)
	client, err := api.New(api.Config{
		BaseURL:           cfg.API.BaseURL,
		Tokens:            sess,
		Logger:            log,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  st,
		prefs:  pstore,
		sess:   sess,
		client: client,
		auth:   auth.NewService(client, sess, log),
		safety: safety.NewService(client, st, log),
		custom: checklist.NewCustomManager(st, nil),
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// metricsAddr optionally exposes the client metrics for scraping during
// long-running commands.
var metricsAddr string

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "sms",
		Short:         "Pre-flight safety management client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (YAML)")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")

	root.AddCommand(
		newLoginCmd(&cfgPath),
		newRegisterCmd(&cfgPath),
		newLogoutCmd(&cfgPath),
		newForgotPasswordCmd(&cfgPath),
		newWhoamiCmd(&cfgPath),
		newChecklistCmd(),
		newEvaluateCmd(&cfgPath),
		newHistoryCmd(&cfgPath),
		newCustomCmd(&cfgPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withApp wires the services, runs fn and tears down.
func withApp(cfgPath *string, fn func(a *app) error) error {
	a, err := newApp(*cfgPath)
	if err != nil {
		return err
	}
	defer a.close()

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", obs.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				a.log.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}
	return fn(a)
}
