package target

import (
	"context"
	"fmt"
)

// New builds the store described by cfg, wrapped with retries when
// cfg.MaxRetries is positive.
func New(ctx context.Context, cfg Config) (Target, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		t   Target
		err error
	)
	switch cfg.Type {
	case TypeS3:
		t, err = newS3Target(ctx, cfg)
	case TypeAzure:
		t, err = newAzureTarget(cfg)
	case TypeGCS:
		t, err = newGCSTarget(ctx, cfg)
	case TypeMemory:
		t = GetOrCreateMemoryTarget(cfg.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s target %q: %w", cfg.Type, cfg.Name, err)
	}

	if cfg.MaxRetries > 0 {
		t = NewRetryTarget(t, cfg.MaxRetries, cfg.RetryBackoff)
	}
	return t, nil
}

// NewAll builds every configured store, in order.
func NewAll(ctx context.Context, cfgs []Config) ([]Target, error) {
	targets := make([]Target, 0, len(cfgs))
	for _, cfg := range cfgs {
		t, err := New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}
