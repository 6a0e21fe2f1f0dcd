// cmd/meal-plan/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcp-meal-plan/internal/auth"
	"mcp-meal-plan/internal/catalog"
	"mcp-meal-plan/internal/config"
	"mcp-meal-plan/internal/export"
	"mcp-meal-plan/internal/models"
	"mcp-meal-plan/internal/planner"
	"mcp-meal-plan/internal/server"
	"mcp-meal-plan/internal/storage"
)

var (
	configPath   = flag.String("config", "", "Path to a TOML config file")
	transport    = flag.String("transport", "http", "Transport mode: http")
	port         = flag.Int("port", 8012, "Port for HTTP transport")
	host         = flag.String("host", "0.0.0.0", "Host address")
	address      = flag.String("address", "", "Address (alias for host)")
	dbPath       = flag.String("db-path", "/data/meal-plan.db", "Database path")
	catalogPath  = flag.String("catalog", "grupos.json", "Food group catalog (JSON)")
	format       = flag.String("format", "", "One-shot output format: json, csv, markdown, html (default: plain lines)")
	hashPassword = flag.String("hash-password", "", "Print the bcrypt hash of a password for the config file and exit")
	version      = flag.Bool("version", false, "Show version")
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [Slot=group*multiplier,...]...\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "With slot arguments a plan is printed and the program exits;")
		fmt.Fprintln(os.Stderr, "without them the HTTP server is started.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println("mcp-meal-plan version 1.0.0")
		os.Exit(0)
	}

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if flag.NArg() > 0 {
		if err := generateOnce(cfg, flag.Args(), *format); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}

	runServer(cfg)
}

// applyFlags lets explicitly set flags win over the config file.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Server.Transport = *transport
		case "port":
			cfg.Server.Port = *port
		case "host":
			cfg.Server.Host = *host
		case "db-path":
			cfg.Storage.DBPath = *dbPath
		case "catalog":
			cfg.Catalog.Path = *catalogPath
		}
	})
	// Use address if provided, otherwise use host
	if *address != "" {
		cfg.Server.Host = *address
	}
}

// generateOnce prints a plan for the slots given on the command line, in the
// order they were given.
func generateOnce(cfg *config.Config, args []string, outputFormat string) error {
	slots := make([]models.MealSlot, 0, len(args))
	for _, arg := range args {
		slot, err := planner.ParseSlotSpec(arg)
		if err != nil {
			return err
		}
		slots = append(slots, slot)
	}

	groups, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	plan, err := planner.Assemble(groups, slots)
	if errors.Is(err, planner.ErrEmptyPlan) {
		fmt.Println(err)
		return nil
	}
	if err != nil {
		return err
	}
	plan.CreatedAt = time.Now()

	for _, issue := range plan.Issues {
		fmt.Fprintf(os.Stderr, "warning: %s, group %d: %s\n", issue.Slot, issue.GroupID, issue.Error)
	}

	if outputFormat != "" {
		exporter, err := export.ForFormat(outputFormat)
		if err != nil {
			return err
		}
		out, err := exporter.Export(plan)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	for i, slot := range plan.Slots {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s:\n", slot.Name)
		for _, line := range slot.Lines() {
			fmt.Println(line)
		}
	}
	return nil
}

func runServer(cfg *config.Config) {
	stor, err := storage.NewSQLiteStorage(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	if len(cfg.Auth.Users) == 0 {
		log.Println("Warning: no users configured, every tool except health will reject requests")
	}
	authSvc := auth.NewService(cfg.Auth.Users, cfg.Auth.JWTSecret, cfg.TokenTTL())

	// Create server
	srv, err := server.NewMealPlanServer(&server.Config{
		Transport: cfg.Server.Transport,
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Slots:     cfg.Slots,
	}, stor, catalog.FileSource{Path: cfg.Catalog.Path}, authSvc)
	if err != nil {
		stor.Close()
		log.Fatalf("Failed to create server: %v", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting meal plan server on %s:%d (catalog %s)", cfg.Server.Host, cfg.Server.Port, cfg.Catalog.Path)
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCh:
		log.Println("Received shutdown signal")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down...")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
