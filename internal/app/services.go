package app

import (
	"context"
	"fmt"

	"vitrine/internal/ai"
	"vitrine/internal/ai/gemini"
	"vitrine/internal/ai/gpt"
	"vitrine/internal/repo"
	"vitrine/internal/services"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Services holds all application services
type Services struct {
	DB             *gorm.DB
	ProductRepo    *repo.ProductRepository
	SupplierRepo   *repo.SupplierRepository
	SalesRepo      *repo.SalesRepository
	AIGate         *ai.Gate
	Flows          *ai.Flows
	StorageService *services.StorageService
}

// NewServices creates a new services container
func NewServices(ctx context.Context, cfg Config, db *gorm.DB) (*Services, error) {
	// Initialize repositories
	productRepo := repo.NewProductRepository(db)
	supplierRepo := repo.NewSupplierRepository(db)
	salesRepo := repo.NewSalesRepository(db)

	gate := ai.NewGate(cfg.AIEnabled())
	model := newModel(ctx, cfg, gate)

	flows, err := ai.NewFlows(model, productRepo,
		ai.WithGate(gate),
		ai.WithMediaFetcher(ai.NewMediaFetcher(nil, cfg.MediaMaxBytes)),
		ai.WithLogger(log.Logger.With().Str("component", "ai").Logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI flows: %w", err)
	}

	// Storage is optional; generated images are returned inline without it
	var storageService *services.StorageService
	if cfg.Storage.Enabled() {
		storageService, err = services.NewStorageService(cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("Storage service unavailable, generated images will not be uploaded")
			storageService = nil
		}
	}

	return &Services{
		DB:             db,
		ProductRepo:    productRepo,
		SupplierRepo:   supplierRepo,
		SalesRepo:      salesRepo,
		AIGate:         gate,
		Flows:          flows,
		StorageService: storageService,
	}, nil
}

// newModel builds the configured provider client. A missing credential or a
// client that cannot be built disables the gate and yields a model that
// refuses every call.
func newModel(ctx context.Context, cfg Config, gate *ai.Gate) ai.Model {
	if !gate.Enabled() {
		log.Warn().Str("provider", cfg.AIProvider).Msg("AI credential not configured, AI features disabled")
		return ai.Unconfigured()
	}

	var (
		model ai.Model
		err   error
	)
	switch cfg.AIProvider {
	case ProviderOpenAI:
		model, err = gpt.NewClient(cfg.OpenAI)
	default:
		model, err = gemini.NewClient(ctx, cfg.Gemini)
	}
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.AIProvider).Msg("Failed to initialize AI client, AI features disabled")
		gate.Disable(err.Error())
		return ai.Unconfigured()
	}

	log.Info().Str("provider", cfg.AIProvider).Msg("AI client initialized")
	return ai.Retry(model, cfg.AIRetry)
}
