package ai

import "math/rand/v2"

// ShuffleFunc permutes n elements through swap, like rand.Shuffle
type ShuffleFunc func(n int, swap func(i, j int))

// filterKnownIDs keeps the ids present in catalog, in the order the model gave them
func filterKnownIDs(ids []string, catalog []ProductSummary) []string {
	valid := make(map[string]struct{}, len(catalog))
	for _, p := range catalog {
		valid[p.ID] = struct{}{}
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := valid[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// firstN returns the ids of the first n catalog entries in catalog order
func firstN(catalog []ProductSummary, n int) []string {
	if n > len(catalog) {
		n = len(catalog)
	}
	out := make([]string, 0, n)
	for _, p := range catalog[:n] {
		out = append(out, p.ID)
	}
	return out
}

// sameCategoryThenShuffled returns products sharing category in catalog order, followed by
// the remaining products in shuffled order, capped at n. The subject is never included.
func sameCategoryThenShuffled(catalog []ProductSummary, subjectID, category string, n int, shuffle ShuffleFunc) []string {
	same := make([]string, 0, len(catalog))
	var rest []string
	for _, p := range catalog {
		if p.ID == subjectID {
			continue
		}
		if category != "" && p.Category == category {
			same = append(same, p.ID)
		} else {
			rest = append(rest, p.ID)
		}
	}

	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	out := append(same, rest...)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func capIDs(ids []string, n int) []string {
	if n > 0 && len(ids) > n {
		return ids[:n]
	}
	return ids
}
