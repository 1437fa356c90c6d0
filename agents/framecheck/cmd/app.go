package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"framecheck/agents/framecheck"
	"framecheck/agents/framecheck/extractor"
	"framecheck/shared/ai"
	"framecheck/shared/config"
	"framecheck/shared/storage"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	config  *config.Config
	store   storage.Store
	browser *extractor.Browser
	popup   *framecheck.Popup
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := seedKey(store, cfg.AI.GeminiAPIKey); err != nil {
		store.Close()
		return nil, err
	}

	opts := extractor.Options{FrameCount: cfg.Browser.Frames}

	var browser *extractor.Browser
	if cfg.Browser.Enabled {
		browser = extractor.NewBrowser(extractor.BrowserOptions{
			RemoteURL:   cfg.Browser.RemoteURL,
			SeekTimeout: time.Duration(cfg.Browser.SeekTimeoutMs) * time.Millisecond,
			Width:       cfg.Browser.Width,
			Height:      cfg.Browser.Height,
			Quality:     cfg.Browser.Quality,
		})
		opts.Browser = browser
		log.Println("Headless browser enabled, frames will be captured")
	}

	if cfg.YouTube.APIKey != "" {
		stats, err := extractor.NewStatsClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			log.Printf("Warning: YouTube stats disabled: %v", err)
		} else {
			opts.Stats = stats
		}
	}

	popup := framecheck.NewPopup(framecheck.PopupOptions{
		Store:     store,
		Extractor: extractor.NewPageAgent(opts),
		Sender:    ai.NewClient(cfg.AI.Model, cfg.AI.BaseURL),
		Language:  cfg.Language,
	})

	return &app{
		config:  cfg,
		store:   store,
		browser: browser,
		popup:   popup,
	}, nil
}

func (a *app) Close() {
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			log.Printf("Warning: Failed to close browser: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		log.Printf("Warning: Failed to close storage: %v", err)
	}
}

// seedKey saves key from the environment when nothing is stored yet.
func seedKey(store storage.Store, key string) error {
	if key == "" {
		return nil
	}
	keys := framecheck.NewKeyStore(store)
	existing, err := keys.Load()
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}
	if _, err := keys.Save(key); err != nil {
		log.Printf("Warning: Ignoring GEMINI_API_KEY: %v", err)
		return nil
	}
	log.Println("API key seeded from environment")
	return nil
}
