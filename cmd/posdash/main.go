package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/posdash/internal/auth"
	"github.com/h0rv/posdash/internal/config"
	"github.com/h0rv/posdash/internal/gateway"
	"github.com/h0rv/posdash/internal/logger"
	"github.com/h0rv/posdash/internal/notify"
	"github.com/h0rv/posdash/internal/tui"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// CLI flags
	configFlag   string
	logLevelFlag string
	screenFlag   string
	exportFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "posdash",
		Short: "Terminal dashboard for the POS content API",
		Long: `posdash is a terminal user interface for a point-of-sale back office.

Browse, filter and delete sales, products and categories, record new sales,
run a point-of-sale counter and export invoices as PDF.

Authentication:
  1. Environment variable: Set POSDASH_TOKEN
  2. Cached session: Run 'posdash login' or 'posdash register' (preferred)
  3. Credentials: Set auth.email and auth.password in posdash.yaml

Screens: menu, dashboard, pos, new-sale, sales, weekly, monthly, products, categories.`,
		SilenceUsage: true,
		RunE:         run,
	}

	// Define CLI flags
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to posdash.yaml. Defaults to ./posdash.yaml or ~/.config/posdash/posdash.yaml.")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override log.level: debug, info, warn or error.")
	rootCmd.Flags().StringVar(&screenFlag, "screen", "", "Screen to open first. Defaults to ui.start_screen.")
	rootCmd.Flags().StringVar(&exportFlag, "export-dir", ".", "Directory exported invoices are written to.")

	rootCmd.AddCommand(loginCmd(), registerCmd(), logoutCmd(), invoiceCmd(), checkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a command needs, built from the loaded configuration.
type env struct {
	cfg      *config.Config
	client   *gateway.Client
	sessions *auth.SessionStore
	log      *zap.Logger
}

func setup() (*env, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialise logger: %w", err)
	}
	if logLevelFlag != "" {
		logger.UpdateLevel(logLevelFlag)
	}
	log := logger.Get()

	client := gateway.New(cfg.API.BaseURL,
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		gateway.WithLogger(logger.Named("gateway")),
	)
	return &env{
		cfg:      cfg,
		client:   client,
		sessions: auth.NewSessionStore(cfg.SessionPath()),
		log:      log,
	}, nil
}

// tokens is the provider chain: env var, cached session, configured credentials.
func (e *env) tokens(ctx context.Context) (string, error) {
	return auth.GetToken(ctx,
		&auth.EnvProvider{},
		&auth.SessionFileProvider{Store: e.sessions},
		&auth.CredentialsProvider{
			Email:    e.cfg.Auth.Email,
			Password: e.cfg.Auth.Password,
			Login:    e.client.Login,
			Store:    e.sessions,
		},
	)
}

// authenticate resolves a token and installs it on the client.
func (e *env) authenticate(ctx context.Context) error {
	token, err := e.tokens(ctx)
	if err != nil {
		return err
	}
	if auth.FromToken(token, time.Now()).Status != auth.StatusAuthenticated {
		return fmt.Errorf("token is expired or malformed; run 'posdash login'")
	}
	e.client.SetToken(token)
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	start := screenFlag
	if start == "" {
		start = e.cfg.UI.StartScreen
	}

	// Keep browser launches from writing over the alt screen
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewAppModel(&tui.Deps{
		Ctx:       ctx,
		Client:    e.client,
		Config:    e.cfg,
		Sessions:  e.sessions,
		Tokens:    e.tokens,
		Notices:   notify.NewQueue(),
		Log:       e.log,
		ExportDir: exportFlag,
	}, start)

	e.log.Info("starting", zap.String("screen", start), zap.String("api", e.cfg.API.BaseURL))

	// Run Bubble Tea program
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}
