package tasks

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"seqmark.io/hmm/redis"
)

type Config struct {
	ResultCacheTTLHours int `envconfig:"HMM_RESULT_CACHE_TTL_HOURS" default:"24"`
}

type Client struct {
	Decodes DecodeTasks
	Cache   ResultCache
}

// NewClient is a preferred way for working with decode task records and
// the decode-result cache.
func NewClient() (Client, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return Client{}, err
	}
	decodesRedisClient, err := redis.NewClient(TasksDB)
	if err != nil {
		return Client{}, err
	}
	cacheRedisClient, err := redis.NewClient(CacheDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Decodes: DecodeTasks{client: decodesRedisClient},
		Cache: ResultCache{
			client: cacheRedisClient,
			ttl:    time.Duration(config.ResultCacheTTLHours) * time.Hour,
		},
	}, nil
}

func (client *Client) Close() {
	_ = client.Decodes.client.Close()
	_ = client.Cache.client.Close()
}
