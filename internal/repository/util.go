package repository

import (
	"context"
	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"
	"time"
)

const (
	searchAttempts = 3
	throttleWait   = 2 * time.Second
)

// search retries throttled requests a bounded number of times.
func search(ctx context.Context, searchService *elastic.SearchService) (*elastic.SearchResult, error) {
	var result *elastic.SearchResult
	var err error

	for attempt := 1; attempt <= searchAttempts; attempt++ {
		result, err = searchService.Do(ctx)
		if !elastic.IsStatusCode(err, 429) {
			return result, err
		}

		zap.L().With(zap.Int("attempt", attempt)).Warn("ElasticSearch: 429 (Too Many Requests)")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(throttleWait):
		}
	}

	return result, err
}
