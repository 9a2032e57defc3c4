// Package spatial answers "what is near this point" queries over schematic
// entities using plain Euclidean distance in file millimetres.
package spatial

import (
	"sort"

	"github.com/OpenTraceLab/kicad-nettrace/pkg/kicad/sexp"
)

// Hit is one entity found by a proximity query
type Hit[T any] struct {
	Item     T
	Distance float64
}

// Within returns the items whose position lies within radius of origin,
// nearest first. Items at equal distance keep their input order.
func Within[T any](origin sexp.Position, items []T, radius float64, pos func(T) sexp.Position) []Hit[T] {
	if radius < 0 {
		return nil
	}

	var hits []Hit[T]
	for _, item := range items {
		d := origin.DistanceTo(pos(item))
		if d <= radius {
			hits = append(hits, Hit[T]{Item: item, Distance: d})
		}
	}

	sortHits(hits)
	return hits
}

// Nearest returns at most k items closest to origin, nearest first.
// Items at equal distance keep their input order.
func Nearest[T any](origin sexp.Position, items []T, k int, pos func(T) sexp.Position) []Hit[T] {
	if k <= 0 || len(items) == 0 {
		return nil
	}

	hits := make([]Hit[T], 0, len(items))
	for _, item := range items {
		hits = append(hits, Hit[T]{Item: item, Distance: origin.DistanceTo(pos(item))})
	}

	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func sortHits[T any](hits []Hit[T]) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
}
