package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisClientValidatesOptions(t *testing.T) {
	_, err := NewRedisClient(context.Background(), Options{Addr: ""})
	assert.Error(t, err)

	_, err = NewRedisClient(context.Background(), Options{Addr: "localhost:6379", DB: -1})
	assert.Error(t, err)
}
