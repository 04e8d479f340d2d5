package service

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupService suppresses webhook redeliveries: chat platforms retry
// deliveries, and a retried absence report must not fan out twice.
type DedupService struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDedupService(rdb *redis.Client, ttl time.Duration) *DedupService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DedupService{rdb: rdb, ttl: ttl}
}

// FirstDelivery reports whether this message id is seen for the first time
// inside the dedup window. Redis being unreachable fails open: processing a
// duplicate is preferable to dropping a real report.
func (s *DedupService) FirstDelivery(ctx context.Context, messageID string) bool {
	if messageID == "" {
		return true
	}
	ok, err := s.rdb.SetNX(ctx, "webhook:dedup:"+messageID, "1", s.ttl).Result()
	if err != nil {
		log.Printf("[Dedup] redis error, failing open: %v", err)
		return true
	}
	return ok
}
