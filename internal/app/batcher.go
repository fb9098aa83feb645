package app

import (
	"github.com/bft-labs/swga/internal/domain"
)

// DefaultImportBatchSize is the number of primers written per transaction.
const DefaultImportBatchSize = 5000

// Batcher accumulates primers for bulk insertion.
type Batcher struct {
	batch   []domain.Primer
	maxSize int
}

// NewBatcher creates a batcher that fills up to maxSize primers.
func NewBatcher(maxSize int) *Batcher {
	if maxSize <= 0 {
		maxSize = DefaultImportBatchSize
	}
	return &Batcher{
		batch:   make([]domain.Primer, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends a primer.
// Returns true if the batch should be written after this add.
func (b *Batcher) Add(p domain.Primer) bool {
	b.batch = append(b.batch, p)
	return len(b.batch) >= b.maxSize
}

// Batch returns the pending primers.
func (b *Batcher) Batch() []domain.Primer {
	return b.batch
}

// Reset clears the batch after it has been written.
func (b *Batcher) Reset() {
	b.batch = b.batch[:0]
}

// HasPending returns true if primers are waiting to be written.
func (b *Batcher) HasPending() bool {
	return len(b.batch) > 0
}
