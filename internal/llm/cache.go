package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Veraticus/spend-sage/internal/model"
)

const (
	defaultCacheSize = 1024
	defaultCacheTTL  = 15 * time.Minute
)

// classificationCache holds validated classifications keyed by the product
// name and the label vocabulary offered to the model. Only results that
// passed parsing are stored.
type classificationCache struct {
	lru *expirable.LRU[string, model.Classification]
}

func newClassificationCache(size int, ttl time.Duration) *classificationCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &classificationCache{lru: expirable.NewLRU[string, model.Classification](size, nil, ttl)}
}

func (c *classificationCache) get(key string) (model.Classification, bool) {
	return c.lru.Get(key)
}

func (c *classificationCache) set(key string, result model.Classification) {
	c.lru.Add(key, result)
}

func (c *classificationCache) len() int {
	return c.lru.Len()
}

// classificationKey hashes the inputs that determine a classification prompt.
func classificationKey(productName string, brands, categories []string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(productName))))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(brands, "\x1f")))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(categories, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}
