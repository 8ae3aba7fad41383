package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/seenimoa/newsense/internal/infra"
	"github.com/seenimoa/newsense/internal/logger"
)

// CachedClassifier memoises successful classifications in a Store, keyed by
// classifier name and a digest of the text. Failures are not stored.
type CachedClassifier struct {
	next  Classifier
	store infra.Store
	log   *slog.Logger
}

// NewCachedClassifier wraps next with store.
func NewCachedClassifier(next Classifier, store infra.Store, log *slog.Logger) *CachedClassifier {
	return &CachedClassifier{next: next, store: store, log: logger.OrDefault(log)}
}

func (c *CachedClassifier) Name() string { return c.next.Name() }

// Classify returns the stored classification for text, or asks the wrapped
// classifier. Cache errors degrade to an uncached call.
func (c *CachedClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	key := cacheKey(c.next.Name(), text)

	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.log.Warn("sentiment cache read failed", "error", err)
	} else if ok {
		var cls Classification
		if err := json.Unmarshal(data, &cls); err == nil {
			return cls, nil
		}
	}

	cls, err := c.next.Classify(ctx, text)
	if err != nil {
		return cls, err
	}
	if data, err := json.Marshal(cls); err == nil {
		if err := c.store.Set(ctx, key, data); err != nil {
			c.log.Warn("sentiment cache write failed", "error", err)
		}
	}
	return cls, nil
}

func cacheKey(provider, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sentiment:" + provider + ":" + hex.EncodeToString(sum[:])
}
