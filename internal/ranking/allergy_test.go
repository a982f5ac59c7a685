// DermaRec - Personalized Skin and Hair Care Recommendation Engine
// Copyright 2026 Lunara Health
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lunara-health/dermarec

package ranking

import (
	"reflect"
	"testing"

	"github.com/lunara-health/dermarec/internal/catalog"
)

func TestFilterCandidatesIngredientCollision(t *testing.T) {
	t.Parallel()

	candidates := []catalog.Product{
		{ID: "p1", Name: "Acne Gel", Ingredients: []string{"benzoyl_peroxide", "glycerin"}},
		{ID: "p2", Name: "Plain Moisturizer", Ingredients: []string{"glycerin"}},
	}
	profile := Profile{Allergies: []string{"benzoyl_peroxide"}}

	survivors, issues := FilterCandidates(candidates, profile, ModeWarn)

	if len(survivors) != 2 {
		t.Fatalf("warn mode survivors = %d, want 2", len(survivors))
	}
	want := []string{"Ingredient: benzoyl_peroxide"}
	if !reflect.DeepEqual(issues["p1"], want) {
		t.Errorf("issues[p1] = %v, want %v", issues["p1"], want)
	}
	if _, flagged := issues["p2"]; flagged {
		t.Error("p2 should not be flagged")
	}
}

func TestFilterCandidatesMechanisms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		product   catalog.Product
		allergies []string
		want      []string
	}{
		{
			name:      "tag collision",
			product:   catalog.Product{ID: "p", Tags: []string{"fragrance", "vegan"}},
			allergies: []string{"fragrance"},
			want:      []string{"Tag: fragrance"},
		},
		{
			name:      "avoid_for collision",
			product:   catalog.Product{ID: "p", AvoidFor: []string{"nut_allergy"}},
			allergies: []string{"nut_allergy"},
			want:      []string{"Avoid: nut_allergy"},
		},
		{
			name: "multiple mechanisms all reported",
			product: catalog.Product{
				ID:          "p",
				Ingredients: []string{"lanolin"},
				Tags:        []string{"lanolin"},
				AvoidFor:    []string{"lanolin"},
			},
			allergies: []string{"lanolin"},
			want:      []string{"Ingredient: lanolin", "Tag: lanolin", "Avoid: lanolin"},
		},
		{
			name:      "case and whitespace insensitive",
			product:   catalog.Product{ID: "p", Ingredients: []string{"Benzoyl_Peroxide"}},
			allergies: []string{" benzoyl_peroxide "},
			want:      []string{"Ingredient: Benzoyl_Peroxide"},
		},
		{
			name:      "no collision",
			product:   catalog.Product{ID: "p", Ingredients: []string{"water"}},
			allergies: []string{"fragrance"},
			want:      nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, issues := FilterCandidates([]catalog.Product{tt.product}, Profile{Allergies: tt.allergies}, ModeWarn)
			if !reflect.DeepEqual(issues["p"], tt.want) {
				t.Errorf("issues = %v, want %v", issues["p"], tt.want)
			}
		})
	}
}

func TestFilterCandidatesStrictRemoves(t *testing.T) {
	t.Parallel()

	candidates := []catalog.Product{
		{ID: "flagged", Ingredients: []string{"fragrance"}},
		{ID: "clean", Ingredients: []string{"water"}},
	}
	profile := Profile{Allergies: []string{"fragrance"}}

	survivors, issues := FilterCandidates(candidates, profile, ModeStrict)

	if len(survivors) != 1 || survivors[0].ID != "clean" {
		t.Fatalf("strict survivors = %v, want only clean", survivors)
	}
	if len(issues["flagged"]) == 0 {
		t.Error("removal should still be described in issues")
	}
}

func TestFilterCandidatesNoAllergies(t *testing.T) {
	t.Parallel()

	candidates := []catalog.Product{{ID: "p", Ingredients: []string{"anything"}}}
	survivors, issues := FilterCandidates(candidates, Profile{}, ModeStrict)

	if len(survivors) != 1 {
		t.Error("no allergies must keep all candidates")
	}
	if len(issues) != 0 {
		t.Errorf("issues = %v, want empty", issues)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	if m, err := ParseMode(""); err != nil || m != ModeWarn {
		t.Errorf("ParseMode(\"\") = %v, %v; want warn default", m, err)
	}
	if m, err := ParseMode("strict"); err != nil || m != ModeStrict {
		t.Errorf("ParseMode(strict) = %v, %v", m, err)
	}
	if _, err := ParseMode("lenient"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}
