package redis

import "github.com/redis/rueidis"

// NewStoreForTest builds a Store around an injected (typically mock) client.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
