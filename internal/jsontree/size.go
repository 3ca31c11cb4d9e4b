package jsontree

// DefaultMaxNodes is the node count above which a document is considered
// large.
const DefaultMaxNodes = 10000

// CountValues returns the number of values in v, counting v itself and
// every nested member and element.
func CountValues(v Value) int {
	count := 1
	switch v.Kind {
	case ObjectKind:
		for _, f := range v.Fields {
			count += CountValues(f.Value)
		}
	case ArrayKind:
		for _, item := range v.Items {
			count += CountValues(item)
		}
	}
	return count
}

// IsLarge reports whether v holds more than maxNodes values. A non-positive
// maxNodes uses DefaultMaxNodes. Counting stops as soon as the limit is
// passed, so the cost is bounded by maxNodes even for self-referencing values.
func IsLarge(v Value, maxNodes int) bool {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return countUpTo(v, maxNodes+1) > maxNodes
}

// countUpTo counts like CountValues but stops once limit is reached.
func countUpTo(v Value, limit int) int {
	count := 1
	switch v.Kind {
	case ObjectKind:
		for _, f := range v.Fields {
			if count >= limit {
				break
			}
			count += countUpTo(f.Value, limit-count)
		}
	case ArrayKind:
		for _, item := range v.Items {
			if count >= limit {
				break
			}
			count += countUpTo(item, limit-count)
		}
	}
	return count
}
