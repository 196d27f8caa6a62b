package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"gopkg.in/natefinch/lumberjack.v2"

	"vitals/internal/auth"
	"vitals/internal/config"
	"vitals/internal/remote"
	"vitals/internal/service"
	"vitals/internal/store"
	"vitals/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Errorf("vitals: %s", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add the remote store URL, API key and OAuth client credentials.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = filepath.Join(configDir, "vitals.log")
	}
	loggingSetup(logFile, cfg.Logging.Level)
	log.Info("vitals starting")

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Remote.ClientID,
		ClientSecret: cfg.Remote.ClientSecret,
		AuthURL:      cfg.Remote.AuthURL,
		TokenURL:     cfg.Remote.TokenURL,
		RedirectURL:  auth.RedirectURL(auth.CallbackPort),
	})

	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No authentication found. Starting OAuth flow...")
		if err := authenticate(ctx, db, oauthCfg); err != nil {
			return fmt.Errorf("authentication: %w", err)
		}
		storedAuth, err = db.GetAuth()
		if err != nil {
			return fmt.Errorf("fetching auth after login: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking auth: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  storedAuth.AccessToken,
		RefreshToken: storedAuth.RefreshToken,
		Expiry:       storedAuth.ExpiresAt,
	}
	persist := func(fresh *oauth2.Token) error {
		return db.UpdateTokens(fresh.AccessToken, fresh.RefreshToken, fresh.Expiry)
	}
	tokenSource := auth.NewTokenSource(oauthCfg, token, persist)

	// A refresh token the server no longer accepts means signing in again
	if _, err := tokenSource.Token(); err != nil {
		log.Warnf("stored token rejected: %s", err)
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if err := db.ClearAuth(); err != nil {
			return fmt.Errorf("clearing stale auth: %w", err)
		}
		if err := authenticate(ctx, db, oauthCfg); err != nil {
			return fmt.Errorf("re-authentication: %w", err)
		}
		storedAuth, err = db.GetAuth()
		if err != nil {
			return fmt.Errorf("fetching auth after login: %w", err)
		}
		tokenSource = auth.NewTokenSource(oauthCfg, &oauth2.Token{
			AccessToken:  storedAuth.AccessToken,
			RefreshToken: storedAuth.RefreshToken,
			Expiry:       storedAuth.ExpiresAt,
		}, persist)
	}

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.APIKey, tokenSource)
	syncSvc := service.NewSyncService(client, db)
	querySvc := service.NewQueryService(db, cfg)

	app := tui.NewApp(syncSvc, querySvc, tui.Options{
		Units:     tui.NewUnits(cfg.Display),
		ExportDir: filepath.Join(configDir, "charts"),
		RateLimit: client.RateLimitStatus,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	log.Info("vitals exiting")
	return nil
}

func authenticate(ctx context.Context, db *store.DB, oauthCfg *oauth2.Config) error {
	result, err := auth.Authenticate(ctx, oauthCfg)
	if err != nil {
		return err
	}

	if err := db.SaveAuth(&store.Auth{
		UserID:       result.UserID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	if result.UserID != "" {
		fmt.Printf("Successfully authenticated as %s!\n", result.UserID)
	} else {
		fmt.Println("Successfully authenticated!")
	}
	log.Infof("authenticated user [%s]", result.UserID)
	return nil
}

// loggingSetup sends logrus output to a rotating file. The TUI owns the
// terminal, so logs never go to stdout.
func loggingSetup(logFileName string, logLevel string) {
	level, err := log.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if !strings.HasSuffix(logFileName, ".log") {
		logFileName += ".log"
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
	log.SetOutput(&lumberjack.Logger{
		Filename:   logFileName,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	})
}
