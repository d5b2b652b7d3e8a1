package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNullableString 空串转nil，非空串保留原值
func TestNullableString(t *testing.T) {
	assert.Nil(t, NullableString(""))

	got := NullableString("hello")
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}

// TestCalculateMD5 已知输入的MD5十六进制摘要
func TestCalculateMD5(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", CalculateMD5(nil))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", CalculateMD5([]byte("hello")))
}
