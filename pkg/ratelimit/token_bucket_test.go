package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTokenBucketAllow 初始令牌耗尽后拒绝请求
func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(60, 3)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

// TestTokenBucketDefaultCapacity capacity<=0 时取QPM一半，至少为1
func TestTokenBucketDefaultCapacity(t *testing.T) {
	tb := NewTokenBucket(10, 0)
	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "第%d个请求应放行", i+1)
	}
	assert.False(t, tb.Allow())

	tb = NewTokenBucket(1, 0)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

// TestTokenBucketRefill 令牌按速率回补
func TestTokenBucketRefill(t *testing.T) {
	// 600 QPM = 每秒10个令牌
	tb := NewTokenBucket(600, 1)
	require.True(t, tb.Allow())
	require.False(t, tb.Allow())

	time.Sleep(150 * time.Millisecond)
	assert.True(t, tb.Allow())
}

// TestTokenBucketWaitCancelled 上下文取消时Wait立即返回
func TestTokenBucketWaitCancelled(t *testing.T) {
	// 速率极低，令牌耗尽后需要等待很久
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestTokenBucketWaitSucceeds 有令牌时Wait不阻塞
func TestTokenBucketWaitSucceeds(t *testing.T) {
	tb := NewTokenBucket(60, 2)
	assert.NoError(t, tb.Wait(context.Background()))
}
