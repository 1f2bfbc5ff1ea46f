package fingerprint

import "sort"

// ForeignKeyDef is one referential-integrity relationship the integrity
// extractor has checked, ported from
// datasynth-fingerprint/src/models/integrity.rs.
type ForeignKeyDef struct {
	Name       string
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
	Inferred   bool
	Confidence float64
	Coverage   float64
	HasOrphans bool
	OrphanRate float64
}

// CardinalityStats summarizes the children-per-parent distribution of one
// checked relationship.
type CardinalityStats struct {
	MinChildren    uint64
	MaxChildren    uint64
	MeanChildren   float64
	MedianChildren float64
	OneToOneRate   float64
}

// IntegrityFingerprint is the full set of checked relationships and
// uniqueness constraints across a run's generated tables.
type IntegrityFingerprint struct {
	ForeignKeys       []ForeignKeyDef
	CardinalityStats  map[string]CardinalityStats
	UniqueConstraints []UniqueConstraint
}

// UniqueConstraint records whether a declared unique column actually held
// unique in the generated data.
type UniqueConstraint struct {
	Table           string
	Columns         []string
	IsSatisfied     bool
	DuplicateGroups uint64
}

func NewIntegrityFingerprint() *IntegrityFingerprint {
	return &IntegrityFingerprint{CardinalityStats: make(map[string]CardinalityStats)}
}

// IntegrityExtractor checks referential integrity and uniqueness directly
// against the in-memory keys a run produced, rather than against a schema
// declaration — every relationship here is observed, not declared.
type IntegrityExtractor struct{}

func NewIntegrityExtractor() *IntegrityExtractor { return &IntegrityExtractor{} }

// CheckForeignKey computes coverage/orphan-rate for a child table's foreign
// key column against the parent table's key set, and the cardinality
// distribution of children per parent.
func (IntegrityExtractor) CheckForeignKey(name, fromTable, fromColumn, toTable, toColumn string, childRefs []string, parentKeys map[string]bool) (ForeignKeyDef, CardinalityStats) {
	if len(childRefs) == 0 {
		return ForeignKeyDef{Name: name, FromTable: fromTable, FromColumn: fromColumn, ToTable: toTable, ToColumn: toColumn, Coverage: 1.0},
			CardinalityStats{}
	}

	childrenPerParent := make(map[string]uint64)
	var orphans int
	for _, ref := range childRefs {
		if parentKeys[ref] {
			childrenPerParent[ref]++
		} else {
			orphans++
		}
	}

	fk := ForeignKeyDef{
		Name:       name,
		FromTable:  fromTable,
		FromColumn: fromColumn,
		ToTable:    toTable,
		ToColumn:   toColumn,
		Confidence: 1.0,
		Coverage:   float64(len(childRefs)-orphans) / float64(len(childRefs)),
		HasOrphans: orphans > 0,
		OrphanRate: float64(orphans) / float64(len(childRefs)),
	}

	return fk, cardinalityStatsOf(childrenPerParent)
}

func cardinalityStatsOf(childrenPerParent map[string]uint64) CardinalityStats {
	if len(childrenPerParent) == 0 {
		return CardinalityStats{}
	}
	counts := make([]uint64, 0, len(childrenPerParent))
	for _, c := range childrenPerParent {
		counts = append(counts, c)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i] < counts[j] })

	var sum, onesCount uint64
	minC, maxC := counts[0], counts[0]
	for _, c := range counts {
		sum += c
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
		if c == 1 {
			onesCount++
		}
	}

	return CardinalityStats{
		MinChildren:    minC,
		MaxChildren:    maxC,
		MeanChildren:   float64(sum) / float64(len(counts)),
		MedianChildren: float64(counts[len(counts)/2]),
		OneToOneRate:   float64(onesCount) / float64(len(counts)),
	}
}

// CheckUnique reports whether values is actually unique, and how many
// duplicate-value groups exist if not.
func (IntegrityExtractor) CheckUnique(table string, columns []string, values []string) UniqueConstraint {
	seen := make(map[string]int, len(values))
	for _, v := range values {
		seen[v]++
	}
	var dupGroups uint64
	for _, c := range seen {
		if c > 1 {
			dupGroups++
		}
	}
	return UniqueConstraint{
		Table:           table,
		Columns:         columns,
		IsSatisfied:     dupGroups == 0,
		DuplicateGroups: dupGroups,
	}
}
