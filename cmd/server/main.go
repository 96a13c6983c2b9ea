package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/twillco/storefront/internal/api"
	"github.com/twillco/storefront/internal/config"
	"github.com/twillco/storefront/internal/events"
	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/internal/tui"
	"github.com/twillco/storefront/internal/upload"
	"github.com/twillco/storefront/pkg/catalog"
)

// Version is set during build via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		cat, err = catalog.ParseFile(cfg.CatalogFile)
		if err != nil {
			log.Fatalf("❌ Failed to load catalog: %v", err)
		}
	}

	uploads, err := upload.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("❌ Failed to open upload directory: %v", err)
	}

	processor := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	feed := events.NewFeed(events.DefaultFeedSize)

	server := api.NewServer(cat, processor, uploads, feed, api.Options{
		Currency:  cfg.Currency,
		MinAmount: cfg.MinAmount,
		PublicURL: cfg.PublicURL,
	})

	serverErrChan := make(chan error, 1)
	start := func() {
		go func() {
			log.Printf("🚀 Starting API server on %s", cfg.Addr())
			if err := server.Run(cfg.Addr()); err != nil {
				serverErrChan <- err
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if cfg.Headless {
		printBanner(cfg)
		for _, w := range cfg.Warnings() {
			log.Printf("⚠️  %s", w)
		}
		start()

		select {
		case err := <-serverErrChan:
			log.Fatalf("Server error: %v", err)
		case <-sigChan:
			log.Printf("🛑 Shutting down...")
		}
		shutdown(server)
		return
	}

	dash := tui.NewDashboard(server, strconv.Itoa(cfg.Port), cfg.PublicURL)

	// Log lines land in the console's log panel as well as stderr
	log.SetOutput(io.MultiWriter(os.Stderr, dash.LogWriter()))

	for _, w := range cfg.Warnings() {
		dash.AddLog(w, "warning")
	}
	dash.AddLog(fmt.Sprintf("📦 %d products in catalog", len(cat.Products)), "info")
	start()

	dashDone := make(chan struct{})
	go func() {
		if err := dash.Run(); err != nil {
			log.Printf("Console error: %v", err)
		}
		close(dashDone)
	}()

	select {
	case err := <-serverErrChan:
		dash.Stop()
		log.SetOutput(os.Stderr)
		log.Fatalf("Server error: %v", err)
	case <-sigChan:
		dash.AddLog("🛑 Shutting down...", "info")
		dash.Stop()
	case <-dashDone:
	}

	log.SetOutput(os.Stderr)
	shutdown(server)
}

func shutdown(server *api.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Shutdown error: %v", err)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Println("╔════════════════════════════════════════╗")
	fmt.Printf("║  👕 Twill T-Shirt Co server %-10s ║\n", Version)
	fmt.Println("╠════════════════════════════════════════╣")
	fmt.Printf("║  Port: %-31d ║\n", cfg.Port)
	fmt.Printf("║  URL:  %-31s ║\n", cfg.PublicURL)
	fmt.Println("╚════════════════════════════════════════╝")
}
