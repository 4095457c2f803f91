package usecase

import (
	"context"
	"log"
	"time"

	"github.com/allerscan/backend/internal/domain"
)

// AnalysisServiceConfig holds configuration for the analysis service.
type AnalysisServiceConfig struct {
	CacheTTL time.Duration
}

// AnalysisService turns a raw barcode plus an allergy profile into a
// risk-annotated product record.
// Flow: normalize -> check cache -> lookup chain -> cache -> evaluate.
type AnalysisService struct {
	cache    domain.CacheRepository
	chain    *LookupChain
	cacheTTL time.Duration
}

// NewAnalysisService creates the service with its dependencies.
func NewAnalysisService(cache domain.CacheRepository, chain *LookupChain, config AnalysisServiceConfig) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	return &AnalysisService{cache: cache, chain: chain, cacheTTL: cacheTTL}
}

// Analyze resolves and classifies one scanned barcode. The only error it
// can return is a normalization rejection (fewer than 8 digits); absence
// of product data is an ordinary result with NotFound provenance.
func (s *AnalysisService) Analyze(ctx context.Context, rawBarcode string, profile *domain.AllergyProfile) (*domain.AnalyzedProduct, error) {
	code, err := domain.NormalizeBarcode(rawBarcode)
	if err != nil {
		return nil, err
	}

	record := s.lookupCached(ctx, code)
	verdict := EvaluateRisk(record, profile)

	// Augmented copy; the looked-up record itself stays immutable.
	return &domain.AnalyzedProduct{
		ProductRecord: *record,
		RiskLevel:     verdict.Level,
		RiskReasons:   verdict.Reasons,
	}, nil
}

func (s *AnalysisService) lookupCached(ctx context.Context, code string) *domain.ProductRecord {
	cacheKey := "product:" + code
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		log.Printf("[Analysis] cache hit for %s", code)
		return cached
	}

	record := s.chain.Lookup(ctx, code)
	if !record.NotFound() {
		if err := s.cache.Set(ctx, cacheKey, record, s.cacheTTL); err != nil {
			log.Printf("[Analysis] caching %s failed: %v", code, err)
		}
	}
	return record
}
