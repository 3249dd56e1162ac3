package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"seqmark.io/hmm/decode"
	"seqmark.io/hmm/redis"
	"seqmark.io/hmm/utils"
)

const CacheDB redis.DB = 1

// ResultCache stores viterbi results keyed by model fingerprint and
// observation hash. Decoding is pure, so a hit can be served without
// touching the model at all.
type ResultCache struct {
	client redis.Client
	ttl    time.Duration
}

// CacheKey derives the cache key for decoding the observation under a
// model with the given fingerprint.
func CacheKey(fingerprint uint64, observed []string) string {
	return fmt.Sprintf("viterbi:%016x:%016x", fingerprint, utils.HashStrings(observed))
}

// Get returns the cached path, or nil on a cache miss.
func (cache ResultCache) Get(key string) (*decode.Path, error) {
	b, err := cache.client.GetRaw(key)
	if err != nil {
		if redis.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var path decode.Path
	if err := json.Unmarshal(b, &path); err != nil {
		return nil, err
	}
	return &path, nil
}

func (cache ResultCache) Put(key string, path decode.Path) error {
	b, err := json.Marshal(path)
	if err != nil {
		return err
	}
	return cache.client.SetRaw(key, b, cache.ttl)
}
