package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-collab/internal/core/domain"
	"github.com/arklim/social-platform-collab/internal/core/port"
	"github.com/arklim/social-platform-collab/internal/repository"
)

const defaultDecisionPrefix = "collab:decision"

// indexTTLSlack keeps the per-principal index alive slightly longer than the
// decisions it points at, so bulk invalidation can still find them.
const indexTTLSlack = time.Minute

// DecisionCache caches resolved access decisions in Redis. Each principal has
// an index set of its decision keys so a membership change can drop all of a
// principal's entries without scanning.
type DecisionCache struct {
	client *red.Client
	prefix string
}

// NewDecisionCache constructs a Redis-backed decision cache.
func NewDecisionCache(client *red.Client, keyPrefix string) *DecisionCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultDecisionPrefix
	}

	return &DecisionCache{client: client, prefix: prefix}
}

// GetDecision fetches a cached decision, returning ErrNotFound on cache miss.
func (c *DecisionCache) GetDecision(ctx context.Context, projectID, principalID string) (*domain.AccessDecision, error) {
	key := c.decisionKey(projectID, principalID)
	if key == "" {
		return nil, fmt.Errorf("project id and principal id are required")
	}

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get decision: %w", err)
	}

	var decision domain.AccessDecision
	if err := json.Unmarshal([]byte(value), &decision); err != nil {
		return nil, fmt.Errorf("unmarshal cached decision: %w", err)
	}

	return &decision, nil
}

// SetDecision stores the decision with the provided TTL and records the key
// in the principal's index set.
func (c *DecisionCache) SetDecision(ctx context.Context, projectID, principalID string, decision domain.AccessDecision, ttl time.Duration) error {
	key := c.decisionKey(projectID, principalID)
	if key == "" {
		return fmt.Errorf("project id and principal id are required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	payload, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, payload, ttl)
	indexKey := c.indexKey(principalID)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, ttl+indexTTLSlack)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set decision: %w", err)
	}

	return nil
}

// InvalidateDecision drops the single (project, principal) entry.
func (c *DecisionCache) InvalidateDecision(ctx context.Context, projectID, principalID string) error {
	key := c.decisionKey(projectID, principalID)
	if key == "" {
		return fmt.Errorf("project id and principal id are required")
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, c.indexKey(principalID), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate decision: %w", err)
	}

	return nil
}

// InvalidatePrincipal drops every cached decision for the principal.
func (c *DecisionCache) InvalidatePrincipal(ctx context.Context, principalID string) error {
	indexKey := c.indexKey(principalID)
	if indexKey == "" {
		return fmt.Errorf("principal id is required")
	}

	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis list principal decisions: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis delete principal decisions: %w", err)
		}
	}

	if err := c.client.Del(ctx, indexKey).Err(); err != nil {
		return fmt.Errorf("redis delete principal decision index: %w", err)
	}

	return nil
}

func (c *DecisionCache) decisionKey(projectID, principalID string) string {
	projectID = strings.TrimSpace(projectID)
	principalID = strings.TrimSpace(principalID)
	if projectID == "" || principalID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", c.prefix, principalID, projectID)
}

func (c *DecisionCache) indexKey(principalID string) string {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return ""
	}
	return fmt.Sprintf("%s:index:%s", c.prefix, principalID)
}

var _ port.DecisionCache = (*DecisionCache)(nil)
