package mlm

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zesch/rwse-checker/internal/domain"
)

const scoreKeyPrefix = "rwse:scores:"

// CachedProvider wraps a score provider with a Redis-backed result cache.
// A deterministic key is derived from the mask token, the masked sentence
// and the candidate list, so identical checks are served without touching
// the model. Cache failures degrade to a direct provider call; they never
// fail the check.
type CachedProvider struct {
	inner  domain.ScoreProvider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProvider(inner domain.ScoreProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedProvider) MaskToken() string {
	return c.inner.MaskToken()
}

func (c *CachedProvider) Score(ctx context.Context, maskedSentence string, candidates []string) ([]domain.ScoredCandidate, error) {
	key := c.cacheKey(maskedSentence, candidates)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var scores []domain.ScoredCandidate
		if unmarshalErr := json.Unmarshal([]byte(raw), &scores); unmarshalErr == nil {
			c.logger.Debug("score cache hit", zap.String("key", key))
			return scores, nil
		}
		c.logger.Warn("score cache entry corrupt, refetching", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("score cache read failed", zap.Error(err))
	}

	scores, err := c.inner.Score(ctx, maskedSentence, candidates)
	if err != nil {
		return nil, err
	}

	if raw, marshalErr := json.Marshal(scores); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
			c.logger.Warn("score cache write failed", zap.Error(setErr))
		}
	}
	return scores, nil
}

func (c *CachedProvider) cacheKey(maskedSentence string, candidates []string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.inner.MaskToken())
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, maskedSentence)
	for _, cand := range candidates {
		_, _ = io.WriteString(h, "|")
		_, _ = io.WriteString(h, cand)
	}
	return scoreKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
