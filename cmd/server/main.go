package main

import (
	"fmt"
	"log"
	"os"

	"github.com/allerscan/backend/config"
	httpDelivery "github.com/allerscan/backend/internal/delivery/http"
	"github.com/allerscan/backend/internal/infrastructure/cache"
	"github.com/allerscan/backend/internal/infrastructure/catalog"
	"github.com/allerscan/backend/internal/infrastructure/engine"
	"github.com/allerscan/backend/internal/infrastructure/registry"
	"github.com/allerscan/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting AllerScan Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Infrastructure: cache, registries, local catalog
	memoryCache := cache.NewMemoryCache()

	registryClient := registry.NewClient(cfg.Registry.ServiceKey)
	primary := registry.NewPrimarySource(registryClient, cfg.Registry.PrimaryBaseURL)
	secondary := registry.NewSecondarySource(registryClient, cfg.Registry.SecondaryBaseURL)
	local := catalog.New()

	if len(cfg.Registry.ServiceKey) >= 8 {
		log.Printf("Registry configured: %s (key: %s...)", cfg.Registry.PrimaryBaseURL, cfg.Registry.ServiceKey[:8])
	}

	// Lookup chain in fallback order: primary, secondary, local catalog
	chain := usecase.NewLookupChain(primary, secondary, local)

	analysisService := usecase.NewAnalysisService(
		memoryCache,
		chain,
		usecase.AnalysisServiceConfig{CacheTTL: cfg.Cache.TTL},
	)

	// Decoding pipeline for uploaded photos
	decomposer := usecase.NewRegionDecomposer(usecase.DecomposerConfig{
		LuminanceJump:     cfg.Scanner.LuminanceJump,
		MinRowTransitions: cfg.Scanner.MinRowTransitions,
		ContrastBoost:     cfg.Scanner.ContrastBoost,
	})
	imageScanner := usecase.NewImageScanner(
		decomposer,
		engine.NewLinearEngine(),
		engine.NewGeneralEngine(),
	)

	log.Printf("Scanner: transitions=%d, jump=%.0f, max pattern error=%.2f",
		cfg.Scanner.MinRowTransitions,
		cfg.Scanner.LuminanceJump,
		cfg.Scanner.MaxMeanPatternError)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(imageScanner, analysisService)
	proxy := httpDelivery.NewProxyHandler(cfg.Registry.PrimaryBaseURL, cfg.Registry.SecondaryBaseURL)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, proxy)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
