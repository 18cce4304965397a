package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores embedding vectors keyed by model + text so identical comment
// texts are not re-embedded across invocations. Vectors are held only in
// memory; nothing is persisted.
type Cache interface {
	Get(key string) ([]float64, bool)
	Set(key string, vector []float64, ttl time.Duration)
	Flush()
}

// Key derives a cache key for an embedding of text under the given model
func Key(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return "threadlens:v1:" + hex.EncodeToString(hash[:])
}
