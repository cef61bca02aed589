// Package cli is the command line front end of the tasks client.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-client/internal/config"
	"github.com/BuzzLyutic/tasks-client/internal/horizon"
	"github.com/BuzzLyutic/tasks-client/internal/remote"
	"github.com/BuzzLyutic/tasks-client/internal/service"
	"github.com/BuzzLyutic/tasks-client/internal/store"
	"github.com/BuzzLyutic/tasks-client/internal/tasklist"
	"github.com/BuzzLyutic/tasks-client/internal/worker"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	now    func() time.Time

	kv         *store.SQLiteStore
	client     *remote.Client
	session    *service.SessionService
	visibility *service.Visibility
	pool       *worker.Pool
	locale     horizon.Locale
}

type Option func(*app)

// WithClock replaces time.Now for listing and toggling.
func WithClock(now func() time.Time) Option {
	return func(a *app) { a.now = now }
}

// Execute runs the command line in args. The local store is closed on return,
// whether or not the command failed.
func Execute(ctx context.Context, args []string, stdout io.Writer, cfg config.Config, logger *zap.Logger, opts ...Option) error {
	a := &app{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	root := newRootCmd(stdout, a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout io.Writer, a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tasks",
		Short:         "Client for the tasks service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.PersistentFlags().StringVar(&a.cfg.APIURL, "api-url", a.cfg.APIURL, "Base URL of the tasks service")
	root.PersistentFlags().StringVar(&a.cfg.StorePath, "store", a.cfg.StorePath, "Path of the local store")

	root.AddCommand(
		newSignInCmd(stdout, a),
		newSignUpCmd(stdout, a),
		newSignOutCmd(stdout, a),
		newWhoAmICmd(stdout, a),
		newListCmd(stdout, a),
		newAddCmd(stdout, a),
		newEditCmd(stdout, a),
		newToggleCmd(stdout, a),
		newDeleteCmd(stdout, a),
		newVisibilityCmd(stdout, a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	if dir := filepath.Dir(a.cfg.StorePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	kv, err := store.Open(a.cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.kv = kv

	a.client = remote.NewClient(a.cfg.APIURL, &http.Client{Timeout: a.cfg.HTTPTimeout}, a.logger)
	a.session = service.NewSessionService(a.client, kv, a.logger)
	a.visibility = service.NewVisibility(kv, a.logger)
	a.locale = horizon.Locale{WeekStart: a.cfg.WeekStart}

	a.session.RestoreSession(ctx)
	a.visibility.Load(ctx)

	a.pool = worker.NewPool(a.logger, a.cfg.WorkerCount)
	a.pool.Start(ctx)
	return nil
}

func (a *app) close() error {
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.kv != nil {
		return a.kv.Close()
	}
	return nil
}

// controller builds the list of one screen and fetches it.
func (a *app) controller(ctx context.Context, h horizon.Horizon) (*tasklist.Controller, error) {
	c := tasklist.New(h, a.client, a.session, a.visibility, a.logger,
		tasklist.WithClock(a.now),
		tasklist.WithSerializer(a.pool),
		tasklist.WithLocale(a.locale),
	)
	if err := c.Focus(ctx); err != nil {
		return nil, friendly(err)
	}
	return c, nil
}
