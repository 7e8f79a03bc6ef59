package compose

// OverlapReport records one pair of pipeline steps whose resolved column
// sets intersect.
type OverlapReport struct {
	// NameA and NameB are the step names, in pipeline order.
	NameA string
	NameB string

	// Columns are the shared column labels, in frame order.
	Columns []string
}

// AuditOverlaps compares every pair of resolved steps and reports those
// sharing at least one input column. Column identity is positional, so a
// name-typed and an index-typed step still compare correctly; the reported
// labels use the first step's representation.
func AuditOverlaps(transformers []ResolvedTransform) []OverlapReport {
	var reports []OverlapReport
	for i := 0; i < len(transformers); i++ {
		for j := i + 1; j < len(transformers); j++ {
			a, b := transformers[i], transformers[j]

			inB := make(map[int]struct{}, b.Columns.Len())
			for _, idx := range b.Columns.Indices {
				inB[idx] = struct{}{}
			}

			var shared []string
			for k, idx := range a.Columns.Indices {
				if _, ok := inB[idx]; ok {
					shared = append(shared, a.Columns.Label(k))
				}
			}
			if len(shared) > 0 {
				reports = append(reports, OverlapReport{
					NameA:   a.Name,
					NameB:   b.Name,
					Columns: shared,
				})
			}
		}
	}
	return reports
}
