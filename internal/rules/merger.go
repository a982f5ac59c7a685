// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package rules

import "sort"

// MergedAction is a deduplicated action with the union of contributing rule
// IDs. Identical actions from different rules collapse into one entry;
// non-identical actions of the same kind stay separate — completeness wins
// over brevity for safety-relevant output.
type MergedAction struct {
	Kind ActionKind `json:"kind"`

	// TimeOfDay is set for routine steps only.
	TimeOfDay string `json:"time_of_day,omitempty"`

	// Text is the instruction, tip, or warning text.
	Text string `json:"text,omitempty"`

	// Tag is set for product-tag requests only.
	Tag string `json:"tag,omitempty"`

	// SourceRules lists every rule ID that contributed this action,
	// sorted for deterministic output.
	SourceRules []string `json:"source_rules"`
}

// MergedDraft is the deduplicated union of actions from all contributing
// rules, grouped by action kind and ordered by first contribution.
type MergedDraft struct {
	Routines    []MergedAction `json:"routines"`
	Diet        []MergedAction `json:"diet"`
	Warnings    []MergedAction `json:"warnings"`
	ProductTags []MergedAction `json:"product_tags"`

	// RuleIDs is the sorted set of all contributing rule IDs.
	RuleIDs []string `json:"rule_ids"`
}

// semanticKey identifies an action for dedup purposes: the discriminating
// fields per kind, never a lossy summary.
type semanticKey struct {
	kind      ActionKind
	timeOfDay string
	text      string
	tag       string
}

// merger accumulates actions keyed semantically, preserving first-seen order
// within each kind so merging is deterministic for a given rule ordering.
type merger struct {
	index map[semanticKey]*MergedAction
	order map[ActionKind][]semanticKey
	rules map[string]struct{}
}

// Merge deduplicates and unions the actions of all matched rules.
// Rules are processed in the order given; the store hands them out sorted by
// priority then ID, so identical inputs always produce identical drafts.
func Merge(matched []MatchedRule) *MergedDraft {
	m := &merger{
		index: make(map[semanticKey]*MergedAction),
		order: make(map[ActionKind][]semanticKey),
		rules: make(map[string]struct{}),
	}

	for _, mr := range matched {
		r := mr.Rule
		m.rules[r.ID] = struct{}{}

		for _, step := range r.Actions.Routines {
			m.add(r.ID, MergedAction{
				Kind:      ActionRoutineStep,
				TimeOfDay: step.TimeOfDay,
				Text:      step.Instruction,
			})
		}
		for _, tip := range r.Actions.Diet {
			m.add(r.ID, MergedAction{Kind: ActionDietTip, Text: tip})
		}
		for _, warning := range r.Actions.Warnings {
			m.add(r.ID, MergedAction{Kind: ActionWarning, Text: warning})
		}
		for _, tag := range r.Actions.ProductTags {
			m.add(r.ID, MergedAction{Kind: ActionProductTag, Tag: tag})
		}
	}

	return m.draft()
}

// add records one action contribution from the given rule.
func (m *merger) add(ruleID string, action MergedAction) {
	key := semanticKey{
		kind:      action.Kind,
		timeOfDay: action.TimeOfDay,
		text:      action.Text,
		tag:       action.Tag,
	}

	if existing, ok := m.index[key]; ok {
		for _, id := range existing.SourceRules {
			if id == ruleID {
				return
			}
		}
		existing.SourceRules = append(existing.SourceRules, ruleID)
		return
	}

	action.SourceRules = []string{ruleID}
	m.index[key] = &action
	m.order[action.Kind] = append(m.order[action.Kind], key)
}

// draft assembles the final MergedDraft with sorted source-rule sets.
func (m *merger) draft() *MergedDraft {
	collect := func(kind ActionKind) []MergedAction {
		keys := m.order[kind]
		out := make([]MergedAction, 0, len(keys))
		for _, key := range keys {
			action := *m.index[key]
			sort.Strings(action.SourceRules)
			out = append(out, action)
		}
		return out
	}

	ruleIDs := make([]string, 0, len(m.rules))
	for id := range m.rules {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	return &MergedDraft{
		Routines:    collect(ActionRoutineStep),
		Diet:        collect(ActionDietTip),
		Warnings:    collect(ActionWarning),
		ProductTags: collect(ActionProductTag),
		RuleIDs:     ruleIDs,
	}
}

// Tags returns the distinct product tags requested by the draft, in order.
func (d *MergedDraft) Tags() []string {
	tags := make([]string, 0, len(d.ProductTags))
	for _, action := range d.ProductTags {
		tags = append(tags, action.Tag)
	}
	return tags
}
