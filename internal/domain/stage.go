package domain

// Stage names a step of the pipeline.
type Stage string

const (
	StageCount  Stage = "count_kmers"
	StageImport Stage = "import_primers"
	StageLocate Stage = "locate"
	StageGraph  Stage = "make_graph"
	StageSets   Stage = "find_sets"
	StageScore  Stage = "score_sets"
)
