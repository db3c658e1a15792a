// Command translator runs the Discord translation bot.
//
// Usage:
//
//	export DISCORD_TOKEN="your-bot-token"
//	export GOOGLE_APPLICATION_CREDENTIALS="service-account.json"
//	go run ./cmd/translator
//
// The guild settings store and flag definitions default to ./db.json
// and ./flags.json; override them with TRANSLATOR_STORE_PATH and
// TRANSLATOR_FLAGS_PATH.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gtranslate "cloud.google.com/go/translate"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/oklahomer/go-sarah-translator"
	"github.com/oklahomer/go-sarah-translator/guildconfig"
	"github.com/oklahomer/go-sarah-translator/translation"
)

func main() {
	cfg := translator.NewConfig()
	cfg.Token = os.Getenv("DISCORD_TOKEN")
	if path := os.Getenv("TRANSLATOR_STORE_PATH"); path != "" {
		cfg.StorePath = path
	}
	if path := os.Getenv("TRANSLATOR_FLAGS_PATH"); path != "" {
		cfg.FlagsPath = path
	}

	// Set up a context that cancels on SIGINT or SIGTERM. Pending
	// reaction cleanups are abandoned on cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Startup failures are fatal: the bot must not come up without its
	// catalogs, its flag definitions, or its settings store.
	client, err := gtranslate.NewClient(ctx)
	if err != nil {
		fatalf("Failed to create translation client: %s", err)
	}
	defer client.Close()

	catalog, err := translation.FetchCatalog(ctx, client)
	if err != nil {
		fatalf("Failed to fetch the language catalog: %s", err)
	}

	flags, err := translation.LoadFlags(cfg.FlagsPath)
	if err != nil {
		fatalf("Failed to load flag definitions: %s", err)
	}

	store, err := guildconfig.Open(cfg.StorePath)
	if err != nil {
		fatalf("Failed to open the guild settings store: %s", err)
	}

	gateway := translation.NewGateway(client)
	engine := translator.NewReactionEngine(flags, gateway, store)

	adapter, err := translator.NewAdapter(cfg, translator.WithReactionHandler(engine))
	if err != nil {
		fatalf("Failed to create adapter: %s", err)
	}

	// In-memory user context storage for conversational state management.
	storage := sarah.NewUserContextStorage(sarah.NewCacheConfig())
	bot := sarah.NewBot(adapter, sarah.BotWithStorage(storage))
	sarah.RegisterBot(bot)

	// Registration order is dispatch priority order.
	for _, props := range translator.CommandProps(cfg, store, gateway, catalog) {
		sarah.RegisterCommandProps(props)
	}

	// Start go-sarah's lifecycle management.
	if err := sarah.Run(ctx, sarah.NewConfig()); err != nil {
		fatalf("Failed to run: %s", err)
	}

	logger.Infof("Translator bot is running with %d languages and %d flags. Press Ctrl+C to stop.", catalog.Len(), len(flags))

	// Block until shutdown signal.
	<-ctx.Done()

	logger.Infof("Shutting down...")
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
