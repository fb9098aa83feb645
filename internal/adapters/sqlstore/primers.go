package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

var _ ports.PrimerRepository = (*PrimerRepository)(nil)

// PrimerRepository stores primers in the primers table.
type PrimerRepository struct {
	db *gorm.DB
}

func (r *PrimerRepository) FindBySeq(ctx context.Context, seq string) (domain.Primer, bool, error) {
	var rec primerRecord
	err := r.db.WithContext(ctx).Where("seq = ?", seq).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Primer{}, false, nil
	}
	if err != nil {
		return domain.Primer{}, false, fmt.Errorf("sqlstore: find primer %s: %w", seq, err)
	}
	return rec.toDomain(), true, nil
}

func (r *PrimerRepository) FindBySeqs(ctx context.Context, seqs []string) (map[string]domain.Primer, error) {
	out := make(map[string]domain.Primer, len(seqs))
	for start := 0; start < len(seqs); start += defaultBatchSize {
		end := min(start+defaultBatchSize, len(seqs))
		var recs []primerRecord
		if err := r.db.WithContext(ctx).Where("seq IN ?", seqs[start:end]).Find(&recs).Error; err != nil {
			return nil, fmt.Errorf("sqlstore: find primers: %w", err)
		}
		for _, rec := range recs {
			out[rec.Seq] = rec.toDomain()
		}
	}
	return out, nil
}

func (r *PrimerRepository) Create(ctx context.Context, p domain.Primer) (domain.Primer, error) {
	if err := p.Validate(); err != nil {
		return domain.Primer{}, err
	}
	rec := fromPrimer(p)
	rec.ID = 0
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Primer{}, fmt.Errorf("sqlstore: create primer %s: %w", p.Seq, err)
	}
	return rec.toDomain(), nil
}

// CreateBatch inserts ps in one transaction. Sequences already present are
// left untouched and not counted.
func (r *PrimerRepository) CreateBatch(ctx context.Context, ps []domain.Primer) (int, error) {
	if len(ps) == 0 {
		return 0, nil
	}
	recs := make([]primerRecord, len(ps))
	for i, p := range ps {
		if err := p.Validate(); err != nil {
			return 0, err
		}
		recs[i] = fromPrimer(p)
		recs[i].ID = 0
	}

	var written int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seq"}},
			DoNothing: true,
		}).CreateInBatches(recs, defaultBatchSize)
		written = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("sqlstore: create primers: %w", err)
	}
	return int(written), nil
}

// List returns primers matching q ordered by ratio descending, then sequence.
func (r *PrimerRepository) List(ctx context.Context, q domain.PrimerQuery) ([]domain.Primer, error) {
	tx := r.db.WithContext(ctx).Model(&primerRecord{})
	if q.MinFgFreq > 0 {
		tx = tx.Where("fg_freq >= ?", q.MinFgFreq)
	}
	if q.MaxBgFreq >= 0 {
		tx = tx.Where("bg_freq <= ?", q.MaxBgFreq)
	}
	if q.Length > 0 {
		tx = tx.Where("length(seq) = ?", q.Length)
	}
	tx = tx.Order("ratio DESC").Order("seq ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var recs []primerRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: list primers: %w", err)
	}
	out := make([]domain.Primer, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out, nil
}

func (r *PrimerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&primerRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("sqlstore: count primers: %w", err)
	}
	return n, nil
}
