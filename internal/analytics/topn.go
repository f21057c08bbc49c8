package analytics

import "sort"

// Count is one group of a TopN result.
type Count struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// TopN groups values, counts each group and returns the n largest groups
// in descending count order. Ties keep the order in which their key was
// first seen.
func TopN(values []string, n int) []Count {
	if n <= 0 {
		return []Count{}
	}

	index := make(map[string]int, len(values))
	counts := make([]Count, 0)
	for _, v := range values {
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, Count{Key: v, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
