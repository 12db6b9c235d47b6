// Package drillplan implements drill-set minimization: assign each hole to
// the largest drill that still fits it, then shrink the used set to at
// most max_bits distinct drills by removing droppable sizes and
// reassigning their holes.
package drillplan

import (
	"fmt"
	"math"
	"sort"
)

// ImpossibleError reports that no candidate drill covers every hole; it
// names the smallest uncoverable hole so a preflight dialog can say which
// constraint failed.
type ImpossibleError struct {
	MinHole float64
	Tol     float64
}

func (e *ImpossibleError) Error() string {
	return fmt.Sprintf("impossible drill plan: no candidate drill covers the minimum %.2f mm hole (tolerance %.2f mm)", e.MinHole, e.Tol)
}

// Assignment is one drill bit and the hole diameters it will cut, ordered
// by bit diameter descending.
type Assignment struct {
	Drill float64
	Holes []float64
}

// Plan assigns holeDiameters to the best-fitting entry in drills (sorted or
// not; Plan sorts its own copy ascending) under tolerance tol, then reduces
// the used set to maxBits distinct sizes if it can. When a hole cannot be
// matched to any candidate drill, the error names the smallest such hole;
// when the set cannot be reduced to maxBits, the error gives the cap and
// names no hole.
func Plan(holeDiameters []float64, drills []float64, tol float64, maxBits int) ([]Assignment, error) {
	sortedDrills := append([]float64(nil), drills...)
	sort.Float64s(sortedDrills)

	assigned := make(map[float64][]float64) // drill -> holes
	unmet := math.Inf(1)
	for _, h := range holeDiameters {
		d, ok := bestDrill(h, sortedDrills, tol)
		if !ok {
			unmet = math.Min(unmet, h)
			continue
		}
		assigned[d] = append(assigned[d], h)
	}
	if !math.IsInf(unmet, 1) {
		return nil, &ImpossibleError{MinHole: unmet, Tol: tol}
	}

	if maxBits > 0 {
		if err := reduce(assigned, sortedDrills, tol, maxBits); err != nil {
			return nil, err
		}
	}

	return toAssignments(assigned), nil
}

// bestDrill returns the largest drill with diameter <= h+tol.
func bestDrill(h float64, drills []float64, tol float64) (float64, bool) {
	best := 0.0
	found := false
	for _, d := range drills {
		if d <= h+tol {
			if !found || d > best {
				best = d
				found = true
			}
		}
	}
	return best, found
}

func usedDrills(assigned map[float64][]float64) []float64 {
	used := make([]float64, 0, len(assigned))
	for d := range assigned {
		used = append(used, d)
	}
	sort.Float64s(used)
	return used
}

// reduce repeatedly drops the smallest-hole-count droppable drill (ties
// broken by smallest diameter) until the used set is within maxBits or no
// drill is droppable.
func reduce(assigned map[float64][]float64, allDrills []float64, tol float64, maxBits int) error {
	for len(assigned) > maxBits {
		used := usedDrills(assigned)

		type reassignment struct {
			hole, newDrill float64
		}

		var dropCandidate float64
		dropCandidateHoles := -1
		dropFound := false
		var reassignPlan []reassignment

		for _, d := range used {
			others := without(used, d)
			var plan []reassignment
			allReassignable := true
			for _, h := range assigned[d] {
				nd, ok := bestDrill(h, others, tol)
				if !ok {
					allReassignable = false
					break
				}
				plan = append(plan, reassignment{hole: h, newDrill: nd})
			}
			if !allReassignable {
				continue
			}
			count := len(assigned[d])
			if !dropFound || count < dropCandidateHoles || (count == dropCandidateHoles && d < dropCandidate) {
				dropCandidate = d
				dropCandidateHoles = count
				dropFound = true
				reassignPlan = plan
			}
		}

		if !dropFound {
			return fmt.Errorf("drill set cannot be reduced to %d bits: %d sizes required", maxBits, len(assigned))
		}

		for _, r := range reassignPlan {
			assigned[r.newDrill] = append(assigned[r.newDrill], r.hole)
		}
		delete(assigned, dropCandidate)
	}
	return nil
}

func without(drills []float64, d float64) []float64 {
	out := make([]float64, 0, len(drills)-1)
	for _, x := range drills {
		if x != d {
			out = append(out, x)
		}
	}
	return out
}

func toAssignments(assigned map[float64][]float64) []Assignment {
	out := make([]Assignment, 0, len(assigned))
	for d, holes := range assigned {
		out = append(out, Assignment{Drill: d, Holes: holes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Drill > out[j].Drill })
	return out
}
