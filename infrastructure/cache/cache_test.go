package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "dedup:msg:unipile_msg:abc123", dedupKey("unipile_msg:abc123"))
}

func TestNewDedupCache(t *testing.T) {
	c := NewDedupCache(nil)
	assert.NotNil(t, c)
}

func TestNewCatalogCache(t *testing.T) {
	c := NewCatalogCache(nil)
	assert.NotNil(t, c)
}
