package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bft-labs/swga/internal/domain"
	"github.com/bft-labs/swga/internal/ports"
)

var _ ports.LocationRepository = (*LocationRepository)(nil)

// LocationRepository stores binding sites and scan markers.
type LocationRepository struct {
	db *gorm.DB
}

func (r *LocationRepository) Indexed(ctx context.Context, primerID int64, genomeID string, strand domain.Strand) (bool, error) {
	return indexed(r.db.WithContext(ctx), primerID, genomeID, strand)
}

func indexed(db *gorm.DB, primerID int64, genomeID string, strand domain.Strand) (bool, error) {
	var rec scanRecord
	err := db.Where("primer_id = ? AND genome_id = ? AND strand = ?", primerID, genomeID, int(strand)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlstore: scan marker: %w", err)
	}
	return true, nil
}

func (r *LocationRepository) Append(ctx context.Context, primerID int64, genomeID string, strand domain.Strand, locs []domain.PrimerLocation) (bool, error) {
	written := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		done, err := indexed(tx, primerID, genomeID, strand)
		if err != nil || done {
			return err
		}

		if len(locs) > 0 {
			recs := make([]locationRecord, len(locs))
			for i, l := range locs {
				recs[i] = locationRecord{
					PrimerID: primerID,
					GenomeID: genomeID,
					RecordID: l.RecordID,
					Offset:   l.Offset,
					Position: l.Position,
					Strand:   int(strand),
				}
			}
			if err := tx.CreateInBatches(recs, defaultBatchSize).Error; err != nil {
				return err
			}
		}

		marker := scanRecord{PrimerID: primerID, GenomeID: genomeID, Strand: int(strand), Sites: len(locs)}
		if err := tx.Create(&marker).Error; err != nil {
			return err
		}
		written = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("sqlstore: append locations for primer %d: %w", primerID, err)
	}
	return written, nil
}

func (r *LocationRepository) Positions(ctx context.Context, primerID int64, genomeID string, strands []domain.Strand) ([]int64, error) {
	in := make([]int, len(strands))
	for i, s := range strands {
		in[i] = int(s)
	}
	var out []int64
	err := r.db.WithContext(ctx).Model(&locationRecord{}).
		Where("primer_id = ? AND genome_id = ? AND strand IN ?", primerID, genomeID, in).
		Order("position").
		Pluck("position", &out).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: positions for primer %d: %w", primerID, err)
	}
	return out, nil
}

func (r *LocationRepository) Locations(ctx context.Context, primerID int64, genomeID string) ([]domain.PrimerLocation, error) {
	var recs []locationRecord
	err := r.db.WithContext(ctx).
		Where("primer_id = ? AND genome_id = ?", primerID, genomeID).
		Order("strand").Order("position").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: locations for primer %d: %w", primerID, err)
	}
	out := make([]domain.PrimerLocation, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out, nil
}
