// Package order reorders polylines to reduce rapid travel between
// cuts: a greedy nearest-neighbor seed from machine home followed by a
// bounded 2-opt refinement. Heuristic, not an exact TSP solve, but the
// result never travels farther than the input order.
package order

import (
	"router-cam/pkg/geometry"
)

// home is the machine origin the tool starts from.
var home = geometry.Point2D{X: 0, Y: 0}

// minImprovement is the smallest 2-opt gain worth applying, in mm.
const minImprovement = 0.001

// maxPasses caps 2-opt refinement passes.
const maxPasses = 20

// clonePaths deep-copies a polyline slice.
func clonePaths(paths []geometry.Polyline) []geometry.Polyline {
	out := make([]geometry.Polyline, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}

// Optimize returns the polylines reordered (and open polylines possibly
// reversed) to approximately minimize total travel from home. Closed
// polylines keep their point order. The input slice is not modified.
func Optimize(paths []geometry.Polyline) []geometry.Polyline {
	if len(paths) <= 1 {
		return clonePaths(paths)
	}

	result := greedy(paths)

	if len(result) > 3 {
		twoOpt(result)
	}

	// Never regress versus the unoptimized order.
	if totalTravel(result) > totalTravel(paths) {
		return clonePaths(paths)
	}
	return result
}

// TotalTravel exposes the travel cost of an ordering for callers that
// report stats.
func TotalTravel(paths []geometry.Polyline) float64 {
	return totalTravel(paths)
}

// totalTravel sums the inter-path gaps starting from home.
func totalTravel(paths []geometry.Polyline) float64 {
	cursor := home
	var total float64
	for _, p := range paths {
		if p.Len() == 0 {
			continue
		}
		total += cursor.Distance(p.Start())
		cursor = p.End()
	}
	return total
}

// greedy repeatedly picks the unused path whose start (or, for open
// paths, reversed end) is nearest the cursor. Ties go to the first
// candidate found.
func greedy(paths []geometry.Polyline) []geometry.Polyline {
	used := make([]bool, len(paths))
	result := make([]geometry.Polyline, 0, len(paths))
	cursor := home

	for range paths {
		best := -1
		bestDist := 0.0
		bestReversed := false

		for i, p := range paths {
			if used[i] || p.Len() == 0 {
				continue
			}

			d := cursor.Distance(p.Start())
			if best < 0 || d < bestDist {
				best = i
				bestDist = d
				bestReversed = false
			}

			if !p.Closed {
				d = cursor.Distance(p.End())
				if d < bestDist {
					best = i
					bestDist = d
					bestReversed = true
				}
			}
		}

		if best < 0 {
			break
		}
		used[best] = true

		chosen := paths[best].Clone()
		if bestReversed {
			chosen = chosen.Reversed()
		}
		cursor = chosen.End()
		result = append(result, chosen)
	}

	return result
}

// twoOpt refines the ordering in place: reverse the sub-sequence [i,j]
// (reversing each open member's own point order) whenever that shortens
// total travel. One best improving move per pass, bounded passes.
func twoOpt(paths []geometry.Polyline) {
	passes := maxPasses
	if len(paths) < passes {
		passes = len(paths)
	}

	for pass := 0; pass < passes; pass++ {
		bestGain := minImprovement
		bestI, bestJ := -1, -1

		base := totalTravel(paths)
		for i := 0; i < len(paths)-1; i++ {
			for j := i + 1; j < len(paths); j++ {
				reverseRange(paths, i, j)
				gain := base - totalTravel(paths)
				reverseRange(paths, i, j)

				if gain > bestGain {
					bestGain = gain
					bestI, bestJ = i, j
				}
			}
		}

		if bestI < 0 {
			return
		}
		reverseRange(paths, bestI, bestJ)
	}
}

// reverseRange reverses the order of paths[i..j] and the point order of
// each open member; closed members are repositioned but keep their
// point order. Applying it twice restores the original state.
func reverseRange(paths []geometry.Polyline, i, j int) {
	for i < j {
		paths[i], paths[j] = flipped(paths[j]), flipped(paths[i])
		i++
		j--
	}
	if i == j {
		paths[i] = flipped(paths[i])
	}
}

// flipped reverses an open polyline's point order; closed polylines
// come back unchanged.
func flipped(p geometry.Polyline) geometry.Polyline {
	if p.Closed {
		return p
	}
	return p.Reversed()
}
