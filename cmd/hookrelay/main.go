// ABOUTME: Entry point for the hookrelay webhook relay server
// ABOUTME: Loads config, opens the store, and serves the HTTP API

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/hookrelay/internal/config"
	"github.com/2389/hookrelay/internal/gateway"
	"github.com/2389/hookrelay/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  _                 _         _
 | |__   ___   ___ | | ___ __ ___| | __ _ _   _
 | '_ \ / _ \ / _ \| |/ / '__/ _ \ |/ _' | | | |
 | | | | (_) | (_) |   <| | |  __/ | (_| | |_| |
 |_| |_|\___/ \___/|_|\_\_|  \___|_|\__,_|\__, |
                                          |___/
`

// getConfigPath returns the path to the hookrelay config file.
// Priority: HOOKRELAY_CONFIG env var > XDG_CONFIG_HOME/hookrelay/hookrelay.yaml > ~/.config/hookrelay/hookrelay.yaml
func getConfigPath() string {
	if envPath := os.Getenv("HOOKRELAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "hookrelay.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "hookrelay", "hookrelay.yaml")
}

// getDataPath returns the path to the hookrelay data directory.
// Priority: XDG_DATA_HOME/hookrelay > ~/.local/share/hookrelay
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "hookrelay")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hookrelay <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the relay server")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  health   Check relay health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Startup info
	green := color.New(color.FgGreen)
	green.Printf("  listening on http://%s\n", cfg.Server.HTTPAddr)
	green.Printf("  database at %s\n", cfg.Database.Path)
	if cfg.Metrics.Enabled {
		green.Printf("  metrics at %s\n", cfg.Metrics.Path)
	}
	fmt.Println()

	// Open store
	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer sqlStore.Close()

	gw := gateway.New(cfg, sqlStore)
	return gw.Start(ctx)
}

// setupLogger builds the process logger from the logging configuration.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// prompt reads a line from the reader, returning the default when empty.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return defaultValue
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue
	}
	return line
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("hookrelay configuration setup")
	fmt.Println("=============================")
	fmt.Println()

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDbPath := filepath.Join(getDataPath(), "hookrelay.db")

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:3001")

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Auth Configuration ---")
	jwtSecret := prompt(reader, "JWT secret (leave empty to read from ${HOOKRELAY_JWT_SECRET})", "")
	if jwtSecret == "" {
		jwtSecret = "${HOOKRELAY_JWT_SECRET}"
	}
	tokenTTL := prompt(reader, "Token TTL", "1h")

	fmt.Println("\n--- Delivery Configuration ---")
	deliveryMode := prompt(reader, "Delivery mode (stub or http)", "stub")

	fmt.Println("\n--- Metrics Configuration ---")
	metricsStr := prompt(reader, "Enable prometheus metrics?", "yes")
	metricsEnabled := strings.ToLower(metricsStr) == "yes" || strings.ToLower(metricsStr) == "y"

	content := fmt.Sprintf(`server:
  http_addr: %q

database:
  path: %q

auth:
  jwt_secret: %q
  token_ttl: %q

delivery:
  mode: %q
  timeout: "10s"

logging:
  level: "info"
  format: "text"

metrics:
  enabled: %t
  path: "/metrics"
`, httpAddr, dbPath, jwtSecret, tokenTTL, deliveryMode, metricsEnabled)

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nWrote %s\n", outputFile)
	return nil
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
