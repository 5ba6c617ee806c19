package mmlcd

import "slices"

// Assignment binds one NPA to one table number of a tier.
type Assignment struct {
	Tier Tier
	ID   int
	NPA  int
}

// Allocate walks npas in order and hands out the tier's table numbers,
// skipping its reserved gap. NPAs left over once the tier is exhausted are
// returned as dropped; that is a reportable condition, not an error.
func Allocate(t Tier, npas []int) (assigned []Assignment, dropped []int) {
	id := t.First
	for i, npa := range npas {
		if !t.Contains(id) {
			return assigned, slices.Clone(npas[i:])
		}
		assigned = append(assigned, Assignment{Tier: t, ID: id, NPA: npa})
		id = t.Next(id)
	}
	return assigned, nil
}

// WorkingList removes duplicate NPAs, keeping discovery order, and moves the
// terminal's own NPA to the front when it is among the candidates.
func WorkingList(candidates []int, own int) []int {
	seen := make(map[int]bool, len(candidates))
	list := make([]int, 0, len(candidates))
	hasOwn := false
	for _, npa := range candidates {
		if seen[npa] {
			continue
		}
		seen[npa] = true
		if npa == own {
			hasOwn = true
			continue
		}
		list = append(list, npa)
	}
	if hasOwn {
		list = append([]int{own}, list...)
	}
	return list
}
