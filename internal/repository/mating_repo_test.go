package repository

import (
	"reflect"
	"testing"

	"genefy/internal/domain"
)

func TestNormalizeMatingQuery(t *testing.T) {
	got := normalizeMatingQuery(domain.MatingQuery{})
	if got.Page != 1 || got.PerPage != defaultMatingPerPage {
		t.Fatalf("expected page 1 of %d, got %+v", defaultMatingPerPage, got)
	}
	got = normalizeMatingQuery(domain.MatingQuery{Page: 3, PerPage: 500})
	if got.Page != 3 || got.PerPage != maxMatingPerPage {
		t.Fatalf("expected per page capped at %d, got %+v", maxMatingPerPage, got)
	}
}

func TestMatingFilter(t *testing.T) {
	where, args := matingFilter(domain.MatingQuery{})
	if where != "" || args != nil {
		t.Fatalf("expected no filter, got %q %v", where, args)
	}

	where, args = matingFilter(domain.MatingQuery{Status: "planned", SireID: "S-7", FemaleID: " "})
	if where != " WHERE status = $1 AND sire_id = $2" {
		t.Fatalf("unexpected where clause %q", where)
	}
	if !reflect.DeepEqual(args, []any{"planned", "S-7"}) {
		t.Fatalf("unexpected args %v", args)
	}
}
