package catalog

import (
	"errors"
	"testing"

	"genefy/internal/domain"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(Default().Traits)
	if err != nil {
		t.Fatalf("unexpected registry error: %v", err)
	}
	return r
}

func TestRegistryResolveKnown(t *testing.T) {
	r := defaultRegistry(t)

	meta := r.Resolve("  SCS ")
	if meta.Key != "scs" || meta.Category != domain.TraitCategoryHealth {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if meta.Polarity != domain.LowerIsBetter {
		t.Fatalf("expected scs lower is better")
	}
	if r.Resolve("beta_casein").Kind != domain.KindCategorical {
		t.Fatalf("expected beta_casein categorical")
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := defaultRegistry(t)

	meta := r.Resolve("zebra_index")
	if meta.Category != domain.TraitCategoryOther {
		t.Fatalf("expected other category, got %s", meta.Category)
	}
	if meta.Label != "ZEBRA_INDEX" || meta.Polarity != domain.HigherIsBetter || meta.Kind != domain.KindNumeric {
		t.Fatalf("unexpected synthesized metadata %+v", meta)
	}
	if _, ok := r.Lookup("zebra_index"); ok {
		t.Fatalf("expected Lookup to miss unknown traits")
	}
}

func TestRegistryCanonical(t *testing.T) {
	r := defaultRegistry(t)

	tests := map[string]string{
		"PRODUCTIVE LIFE": "productive_life",
		"PL":              "productive_life",
		"NM$":             "net_merit",
		"milk":            "milk",
		"Mystery":         "mystery",
	}
	for raw, want := range tests {
		if got := r.Canonical(raw); got != want {
			t.Fatalf("expected %q for %q, got %q", want, raw, got)
		}
	}
}

func TestRegistryCategoriesPartition(t *testing.T) {
	r := defaultRegistry(t)

	seen := map[string]string{}
	total := 0
	for _, cat := range r.Categories() {
		for _, k := range r.Keys(cat) {
			if prev, dup := seen[k]; dup {
				t.Fatalf("trait %s in %s and %s", k, prev, cat)
			}
			seen[k] = cat
			total++
		}
	}
	if total != r.Len() || len(r.All()) != r.Len() {
		t.Fatalf("expected %d traits across categories, got %d", r.Len(), total)
	}
}

func TestNewRegistryErrors(t *testing.T) {
	if _, err := NewRegistry(nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
	defs := []TraitDefinition{
		{Key: "milk", Category: domain.TraitCategoryProduction},
		{Key: "MILK", Category: domain.TraitCategoryProduction},
	}
	if _, err := NewRegistry(defs); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog for duplicated key, got %v", err)
	}
}

func TestTraitNormalize(t *testing.T) {
	r := defaultRegistry(t)

	if n, ok := r.Resolve("net_merit").Normalize(500); !ok || n != 0.5 {
		t.Fatalf("expected 0.5, got %v %t", n, ok)
	}
	if n, _ := r.Resolve("net_merit").Normalize(9999); n != 1 {
		t.Fatalf("expected clip at 1, got %v", n)
	}
	if n, _ := r.Resolve("rfi").Normalize(150); n != 0 {
		t.Fatalf("expected inverted 0 for worst rfi, got %v", n)
	}
	if _, ok := r.Resolve("jpi").Normalize(100); ok {
		t.Fatalf("expected trait without reference to not normalise")
	}
}

func TestRegistryResolveAcceptsAliasesAndSpaces(t *testing.T) {
	r := defaultRegistry(t)

	if got := r.Resolve("Net Merit"); got.Key != "net_merit" || got.Category != domain.TraitCategoryEconomic {
		t.Fatalf("expected net_merit in economic, got %+v", got)
	}
	if got := r.Resolve("PL"); got.Key != "productive_life" {
		t.Fatalf("expected alias PL to resolve to productive_life, got %+v", got)
	}
	if _, ok := r.Lookup("Productive Life"); !ok {
		t.Fatalf("expected Lookup to accept spaced names")
	}
}
