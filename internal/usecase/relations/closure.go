package relations

import (
	domdoc "github.com/kailas-cloud/doccat/internal/domain/document"
	domlabel "github.com/kailas-cloud/doccat/internal/domain/label"
)

// maxDepth caps the closure at ten rounds. A closure needing more rounds is
// truncated; the cap guarantees termination over pathological label graphs.
const maxDepth = 10

// closure walks the corpus breadth-first. Each round collects every
// unvisited document carrying ALL frontier labels (conjunctive), then the
// labels of this round's matches that have not been searched yet become the
// next frontier. An empty initial frontier matches everything. Documents are
// deduplicated by hash and returned in discovery order.
func closure(corpus []domdoc.Document, initial []domlabel.Pair) []domdoc.Document {
	visited := make(map[string]struct{}, len(corpus))
	searched := make(map[domlabel.Pair]struct{}, len(initial))
	var result []domdoc.Document

	frontier := dedupe(initial)
	for depth := 0; depth < maxDepth; depth++ {
		for _, p := range frontier {
			searched[p] = struct{}{}
		}

		var next []domlabel.Pair
		matchedAny := false
		for i := range corpus {
			d := &corpus[i]
			if _, ok := visited[d.Hash()]; ok {
				continue
			}
			if !hasAll(d, frontier) {
				continue
			}
			visited[d.Hash()] = struct{}{}
			result = append(result, *d)
			matchedAny = true
			for _, l := range d.Labels() {
				if _, ok := searched[l.Pair()]; !ok {
					next = append(next, l.Pair())
				}
			}
		}
		if !matchedAny || len(next) == 0 {
			break
		}
		frontier = dedupe(next)
	}
	return result
}

func hasAll(d *domdoc.Document, pairs []domlabel.Pair) bool {
	for _, p := range pairs {
		if !d.HasPair(p) {
			return false
		}
	}
	return true
}

func dedupe(pairs []domlabel.Pair) []domlabel.Pair {
	seen := make(map[domlabel.Pair]struct{}, len(pairs))
	out := pairs[:0]
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
