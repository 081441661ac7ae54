package counter

import (
	"context"
	"strconv"

	"github.com/viniciusbm/onboardly/internal/pkg/cache"
)

const (
	webhookEventsKey = "webhook:counters:events"
	emailsSentKey    = "notify:counters:emails"
)

// AddWebhookEvent increments the per-kind delivery counter in Redis.
func AddWebhookEvent(kind string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookEventsKey, kind, 1).Err()
}

// AddEmailSent increments the per-category sent-email counter in Redis.
func AddEmailSent(category string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, emailsSentKey, category, 1).Err()
}

// Snapshot reads all counters for the admin stats endpoint.
func Snapshot() (webhookEvents map[string]int64, emailsSent map[string]int64, err error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	webhookEvents, err = readHash(rdb.HGetAll(ctx, webhookEventsKey).Result())
	if err != nil {
		return nil, nil, err
	}
	emailsSent, err = readHash(rdb.HGetAll(ctx, emailsSentKey).Result())
	if err != nil {
		return nil, nil, err
	}
	return webhookEvents, emailsSent, nil
}

func readHash(data map[string]string, err error) (map[string]int64, error) {
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(data))
	for k, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		out[k] = n
	}
	return out, nil
}
