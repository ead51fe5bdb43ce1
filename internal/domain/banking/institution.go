package banking

import (
	"context"
	"fmt"
	"log"

	"horizon/internal/domain/bank"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/shared/cache"
)

// InstitutionResolver looks up institution display metadata, memoizing results.
type InstitutionResolver struct {
	client       plaid.ClientInterface
	countryCodes []string
	cache        *cache.LRU[*bank.Institution]
}

// NewInstitutionResolver creates a resolver scoped to countryCodes. institutionCache may be nil.
func NewInstitutionResolver(client plaid.ClientInterface, countryCodes []string, institutionCache *cache.LRU[*bank.Institution]) *InstitutionResolver {
	return &InstitutionResolver{
		client:       client,
		countryCodes: countryCodes,
		cache:        institutionCache,
	}
}

// Resolve returns the institution or an error wrapping bank.ErrInstitutionLookup.
// Failures are never cached and never retried.
func (r *InstitutionResolver) Resolve(ctx context.Context, institutionID string) (*bank.Institution, error) {
	if institutionID == "" {
		return nil, fmt.Errorf("%w: no institution id", bank.ErrInstitutionLookup)
	}

	if r.cache != nil {
		if inst, ok := r.cache.Get(institutionID); ok {
			return inst, nil
		}
	}

	resp, err := r.client.GetInstitution(ctx, institutionID, r.countryCodes)
	if err != nil {
		log.Printf("Error getting institution %s: %v", institutionID, err)
		return nil, fmt.Errorf("%w: %w", bank.ErrInstitutionLookup, err)
	}

	inst := &bank.Institution{
		ID:   resp.Institution.InstitutionID,
		Name: resp.Institution.Name,
	}
	if resp.Institution.URL != nil {
		inst.URL = *resp.Institution.URL
	}
	if resp.Institution.Logo != nil {
		inst.Logo = *resp.Institution.Logo
	}
	if resp.Institution.PrimaryColor != nil {
		inst.PrimaryColor = *resp.Institution.PrimaryColor
	}

	if r.cache != nil {
		r.cache.Set(institutionID, inst)
	}
	return inst, nil
}
