package sqlstore

import (
	"time"

	"github.com/bft-labs/swga/internal/domain"
)

// primerRecord is the primers table.
type primerRecord struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Seq       string  `gorm:"uniqueIndex;not null"`
	FgFreq    int64   `gorm:"not null;index"`
	BgFreq    int64   `gorm:"not null;index"`
	Ratio     float64 `gorm:"not null;index"`
	CreatedAt time.Time
}

func (primerRecord) TableName() string { return "primers" }

func (r primerRecord) toDomain() domain.Primer {
	return domain.Primer{ID: r.ID, Seq: r.Seq, FgFreq: r.FgFreq, BgFreq: r.BgFreq, Ratio: r.Ratio}
}

func fromPrimer(p domain.Primer) primerRecord {
	return primerRecord{ID: p.ID, Seq: p.Seq, FgFreq: p.FgFreq, BgFreq: p.BgFreq, Ratio: p.Ratio}
}

// locationRecord is the locations table.
type locationRecord struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	PrimerID int64  `gorm:"not null;index:idx_location_primer_genome,priority:1"`
	GenomeID string `gorm:"not null;index:idx_location_primer_genome,priority:2"`
	RecordID string `gorm:"not null"`
	Offset   int64  `gorm:"not null"`
	Position int64  `gorm:"not null"`
	Strand   int    `gorm:"not null"`
}

func (locationRecord) TableName() string { return "locations" }

func (r locationRecord) toDomain() domain.PrimerLocation {
	return domain.PrimerLocation{
		PrimerID: r.PrimerID,
		GenomeID: r.GenomeID,
		RecordID: r.RecordID,
		Offset:   r.Offset,
		Position: r.Position,
		Strand:   domain.Strand(r.Strand),
	}
}

// scanRecord marks a (primer, genome, strand) triple as indexed.
type scanRecord struct {
	PrimerID  int64  `gorm:"primaryKey"`
	GenomeID  string `gorm:"primaryKey"`
	Strand    int    `gorm:"primaryKey"`
	Sites     int
	CreatedAt time.Time
}

func (scanRecord) TableName() string { return "location_scans" }
