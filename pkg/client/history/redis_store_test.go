package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var _ Store = (*RedisStore)(nil)

func TestRedisStore_KeyPrefix(t *testing.T) {
	s := &RedisStore{}

	assert.Equal(t, "testbed:"+StorageKey, s.key(StorageKey))
}
