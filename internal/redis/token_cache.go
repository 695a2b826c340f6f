package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/pkg/shiprocket"

	"github.com/go-redis/redis/v8"
)

// TokenCache keeps the shipping bearer token in redis so every replica shares one login.
type TokenCache struct {
	client *Client
	key    string
}

func NewTokenCache(client *Client, name string) *TokenCache {
	return &TokenCache{client: client, key: "token:" + name}
}

func (t *TokenCache) Get(ctx context.Context) (shiprocket.Token, bool) {
	val, err := t.client.rdb.Get(ctx, t.key).Bytes()
	if err != nil {
		return shiprocket.Token{}, false
	}
	var token shiprocket.Token
	if err := json.Unmarshal(val, &token); err != nil {
		return shiprocket.Token{}, false
	}
	if !token.Valid(time.Now()) {
		return shiprocket.Token{}, false
	}
	return token, true
}

func (t *TokenCache) Set(ctx context.Context, token shiprocket.Token) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return t.client.rdb.Set(ctx, t.key, data, ttl).Err()
}

func (t *TokenCache) Invalidate(ctx context.Context) error {
	err := t.client.rdb.Del(ctx, t.key).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
