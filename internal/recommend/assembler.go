// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lunara-health/dermarec/internal/ranking"
	"github.com/lunara-health/dermarec/internal/rules"
)

// Assemble combines the merged draft, escalation advisory, and ranked
// products into a final Recommendation. It is a pure combination step: no
// business logic, no I/O. The only failures are defensive checks against
// structurally invalid inputs, which indicate a bug upstream.
func Assemble(draft *rules.MergedDraft, advisory *rules.Advisory, ranked []ranking.RankedProduct, disclaimer string, meta Metadata) (*Recommendation, error) {
	if draft == nil {
		return nil, fmt.Errorf("merged draft must not be nil")
	}
	if err := checkDraft(draft); err != nil {
		return nil, err
	}
	for i, rp := range ranked {
		if rp.Rank != i+1 {
			return nil, fmt.Errorf("ranked product %q has rank %d at position %d", rp.Product.ID, rp.Rank, i)
		}
	}

	applied := appliedRuleIDs(draft, advisory)

	return &Recommendation{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Routines:       draft.Routines,
		Diet:           draft.Diet,
		Warnings:       draft.Warnings,
		Escalation:     advisory,
		RankedProducts: ranked,
		AppliedRuleIDs: applied,
		Disclaimer:     disclaimer,
		Metadata:       meta,
	}, nil
}

// checkDraft verifies every merged action carries at least one source rule.
// An action without one cannot be audited and must never reach output.
func checkDraft(draft *rules.MergedDraft) error {
	sections := [][]rules.MergedAction{draft.Routines, draft.Diet, draft.Warnings, draft.ProductTags}
	for _, section := range sections {
		for _, action := range section {
			if len(action.SourceRules) == 0 {
				return fmt.Errorf("merged %s action %q has no source rules", action.Kind, action.Text)
			}
		}
	}
	return nil
}

// appliedRuleIDs computes the sorted union of every rule ID referenced in
// the draft or the escalation advisory.
func appliedRuleIDs(draft *rules.MergedDraft, advisory *rules.Advisory) []string {
	set := make(map[string]struct{}, len(draft.RuleIDs))
	for _, id := range draft.RuleIDs {
		set[id] = struct{}{}
	}
	if advisory != nil {
		for _, id := range advisory.SourceRules {
			set[id] = struct{}{}
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
