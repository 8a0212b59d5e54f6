package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"user_hub/internal/domain/models"
	"user_hub/internal/lib/logger/sl"
	"user_hub/internal/metrics"
)

// AssetLocationResolver turns an opaque asset key into a time-limited
// retrieval URL. The S3 presign client satisfies this.
type AssetLocationResolver interface {
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type URLCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, url string, ttl time.Duration) error
}

// cached URLs must die before the presigned URL itself does
const cacheTTLMargin = time.Minute

type AssetEnricher struct {
	log            *slog.Logger
	resolver       AssetLocationResolver
	cache          URLCache // optional
	urlTTL         time.Duration
	resolveTimeout time.Duration
}

func NewAssetEnricher(log *slog.Logger, resolver AssetLocationResolver, cache URLCache, urlTTL, resolveTimeout time.Duration) *AssetEnricher {
	return &AssetEnricher{
		log:            log,
		resolver:       resolver,
		cache:          cache,
		urlTTL:         urlTTL,
		resolveTimeout: resolveTimeout,
	}
}

// Enrich resolves every row's avatar key into a retrieval URL, all rows in
// flight at once. Results are written back to the row's original index, so
// output order and length always match the input no matter which resolution
// finishes first. Rows without a key are passed through with no call issued;
// a failed resolution degrades to an empty URL rather than failing the page.
func (e *AssetEnricher) Enrich(ctx context.Context, rows []models.UserProfile) []models.UserProfile {
	const op = "asset_service.Enrich"

	out := make([]models.UserProfile, len(rows))
	copy(out, rows)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].Avatar == "" {
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			url, err := e.resolve(ctx, out[i].Avatar)
			if err != nil {
				e.log.Warn("avatar url resolution failed",
					slog.String("op", op),
					slog.String("key", out[i].Avatar),
					sl.Err(err),
				)
				return
			}

			out[i].AvatarURL = url
		}(i)
	}
	wg.Wait()

	return out
}

func (e *AssetEnricher) resolve(ctx context.Context, key string) (string, error) {
	if e.cache != nil {
		if url, err := e.cache.Get(ctx, key); err == nil && url != "" {
			return url, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.resolveTimeout)
	defer cancel()

	url, err := e.resolver.PresignedGetURL(ctx, key, e.urlTTL)
	if err != nil {
		metrics.AvatarResolutionsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.AvatarResolutionsTotal.WithLabelValues("success").Inc()

	if e.cache != nil {
		if cacheTTL := e.urlTTL - cacheTTLMargin; cacheTTL > 0 {
			if err := e.cache.Set(ctx, key, url, cacheTTL); err != nil {
				e.log.Debug("failed to cache avatar url", slog.String("key", key), sl.Err(err))
			}
		}
	}

	return url, nil
}
