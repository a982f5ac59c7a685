// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package ranking

import (
	"strings"

	"github.com/lunara-health/dermarec/internal/catalog"
	"github.com/lunara-health/dermarec/internal/metrics"
)

// FilterCandidates checks every candidate against the profile's declared
// allergies using three independent mechanisms: ingredient intersection,
// tag intersection, and the candidate's own avoid_for list.
//
// In warn mode all candidates survive; flagged ones get their issues recorded
// in the returned map, keyed by product ID. In strict mode flagged candidates
// are dropped entirely and the map only describes the removals.
func FilterCandidates(candidates []catalog.Product, profile Profile, mode Mode) ([]catalog.Product, map[string][]string) {
	issues := make(map[string][]string)
	if len(profile.Allergies) == 0 {
		return candidates, issues
	}

	allergies := make(map[string]struct{}, len(profile.Allergies))
	for _, a := range profile.Allergies {
		allergies[normalize(a)] = struct{}{}
	}

	survivors := make([]catalog.Product, 0, len(candidates))
	for _, p := range candidates {
		found := collectIssues(p, allergies)
		if len(found) == 0 {
			survivors = append(survivors, p)
			continue
		}

		issues[p.ID] = found
		if mode == ModeStrict {
			continue
		}
		survivors = append(survivors, p)
	}

	return survivors, issues
}

// collectIssues returns human-readable safety issues for every allergen
// collision in the candidate, in mechanism order: ingredients, tags, avoid_for.
func collectIssues(p catalog.Product, allergies map[string]struct{}) []string {
	var found []string

	for _, ing := range p.Ingredients {
		if _, ok := allergies[normalize(ing)]; ok {
			found = append(found, "Ingredient: "+ing)
			metrics.RecordFiltered("ingredient")
		}
	}
	for _, tag := range p.Tags {
		if _, ok := allergies[normalize(tag)]; ok {
			found = append(found, "Tag: "+tag)
			metrics.RecordFiltered("tag")
		}
	}
	for _, avoid := range p.AvoidFor {
		if _, ok := allergies[normalize(avoid)]; ok {
			found = append(found, "Avoid: "+avoid)
			metrics.RecordFiltered("avoid_for")
		}
	}

	return found
}

// normalize folds case and surrounding whitespace so allergen comparisons
// are insensitive to formatting differences between catalog and profile.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
