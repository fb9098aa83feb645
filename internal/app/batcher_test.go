package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bft-labs/swga/internal/domain"
)

func TestBatcher(t *testing.T) {
	b := NewBatcher(2)
	assert.False(t, b.HasPending())

	assert.False(t, b.Add(domain.NewPrimer("ACGT", 1, 0)))
	assert.True(t, b.Add(domain.NewPrimer("CGTA", 1, 0)), "full at max size")
	assert.Len(t, b.Batch(), 2)

	b.Reset()
	assert.False(t, b.HasPending())
	assert.False(t, b.Add(domain.NewPrimer("GTAC", 1, 0)))
	assert.Equal(t, "GTAC", b.Batch()[0].Seq)
}

func TestNewBatcher_DefaultSize(t *testing.T) {
	b := NewBatcher(0)
	assert.Equal(t, DefaultImportBatchSize, b.maxSize)
}
