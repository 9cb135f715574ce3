package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/devwatch/sentinel/pkg/api"
	"github.com/devwatch/sentinel/pkg/config"
	"github.com/devwatch/sentinel/pkg/store"
)

const (
	appName    = "Device Sentinel"
	appVersion = "1.0.0"
)

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:    "sentinel",
		Usage:   "Device and USB monitoring backend",
		Version: appVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SENTINEL_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				level = logrus.InfoLevel
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
			})
			return nil
		},
		Commands: []*cli.Command{
			commandServe(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandServe() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the monitoring backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the HTTP API",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the sqlite database `FILE`",
			},
			&cli.StringFlag{
				Name:    "admin-key",
				Usage:   "Shared secret required on admin routes",
				EnvVars: []string{"SENTINEL_ADMIN_KEY"},
			},
			&cli.DurationFlag{
				Name:  "offline-threshold",
				Usage: "Heartbeat staleness before a device counts as offline",
			},
			&cli.DurationFlag{
				Name:  "dedup-window",
				Usage: "Suppression window for duplicate alerts",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg := loadConfig(c)

	printBanner()

	if cfg.AdminKey == "" {
		log.Warn("No admin key configured; admin routes are unprotected")
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	st, err := store.Open(cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	log.Infof("Database ready at %s", cfg.DatabasePath)

	server := api.NewServer(cfg, st, log)

	color.Green("\n%s v%s", appName, appVersion)
	color.Green("API listening at http://localhost:%s", cfg.ListenPort)
	if cfg.EnableStream {
		color.Green("Alert stream at ws://localhost:%s/ws/alerts", cfg.ListenPort)
	}

	return server.Start()
}

func loadConfig(c *cli.Context) config.Config {
	cfg := config.DefaultConfig()

	if path := c.String("config"); path != "" {
		loaded, err := config.LoadConfigFromFile(path)
		if err != nil {
			log.Warnf("Failed to load config file %s: %v (using defaults)", path, err)
		} else {
			cfg = loaded
		}
	}

	// CLI flags override the file
	if v := c.String("port"); v != "" {
		cfg.ListenPort = v
	}
	if v := c.String("db"); v != "" {
		cfg.DatabasePath = v
	}
	if v := c.String("admin-key"); v != "" {
		cfg.AdminKey = v
	}
	if v := c.Duration("offline-threshold"); v > 0 {
		cfg.OfflineThreshold = v
	}
	if v := c.Duration("dedup-window"); v > 0 {
		cfg.DedupWindow = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	normalizeDurations(&cfg)

	return cfg
}

// normalizeDurations guards against zero values from sparse config files
func normalizeDurations(cfg *config.Config) {
	if cfg.OfflineThreshold <= 0 {
		cfg.OfflineThreshold = 60 * time.Second
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = time.Hour
	}
}

func printBanner() {
	banner := `
╔══════════════════════════════════════════════════╗
║                                                  ║
║                 Device Sentinel                  ║
║                                                  ║
║           Monitor - Classify - Protect           ║
║                                                  ║
╚══════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}
