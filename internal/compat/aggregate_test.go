package compat

import (
	"reflect"
	"testing"

	types "github.com/yungbote/aquasync-backend/internal/domain"
)

func TestTankmatesRollup(t *testing.T) {
	names := []string{"Angelfish", "Betta", "Corydoras"}
	verdicts := []Verdict{
		{SpeciesA: "Angelfish", SpeciesB: "Betta", Level: types.LevelCompatible},
		{SpeciesA: "Angelfish", SpeciesB: "Corydoras", Level: types.LevelConditional},
		{SpeciesA: "Betta", SpeciesB: "Corydoras", Level: types.LevelIncompatible},
	}

	got := Tankmates(names, verdicts)
	want := map[string][]string{
		"Angelfish": {"Betta"},
		"Betta":     {"Angelfish"},
		"Corydoras": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rollup mismatch:\nwant=%v\ngot=%v", want, got)
	}
}

func TestTankmatesEverySpeciesGetsARow(t *testing.T) {
	names := []string{"Betta"}
	got := Tankmates(names, nil)
	if len(got) != 1 {
		t.Fatalf("row count: want=1 got=%d", len(got))
	}
	if list, ok := got["Betta"]; !ok || len(list) != 0 {
		t.Fatalf("expected empty rollup for Betta, got %v", got)
	}
}

func TestTankmatesIgnoresUnknownNames(t *testing.T) {
	names := []string{"Betta"}
	verdicts := []Verdict{
		{SpeciesA: "Betta", SpeciesB: "Ghost Species", Level: types.LevelCompatible},
	}
	got := Tankmates(names, verdicts)
	if len(got) != 1 {
		t.Fatalf("unknown partner should not add rows: %v", got)
	}
	if !reflect.DeepEqual(got["Betta"], []string{"Ghost Species"}) {
		t.Fatalf("known species still records the partner name: %v", got["Betta"])
	}
}

func TestTankmatesSortsPartners(t *testing.T) {
	names := []string{"Corydoras", "Angelfish", "Betta", "Danio"}
	verdicts := []Verdict{
		{SpeciesA: "Corydoras", SpeciesB: "Danio", Level: types.LevelCompatible},
		{SpeciesA: "Angelfish", SpeciesB: "Corydoras", Level: types.LevelCompatible},
		{SpeciesA: "Betta", SpeciesB: "Corydoras", Level: types.LevelCompatible},
	}
	got := Tankmates(names, verdicts)
	want := []string{"Angelfish", "Betta", "Danio"}
	if !reflect.DeepEqual(got["Corydoras"], want) {
		t.Fatalf("partners not sorted: %v", got["Corydoras"])
	}
}

func TestExtremes(t *testing.T) {
	tankmates := map[string][]string{
		"Angelfish": {"Betta"},
		"Betta":     {"Angelfish"},
		"Corydoras": {},
	}
	most, least := Extremes(tankmates)
	// Angelfish and Betta tie at one partner; the smaller name wins.
	if most != "Angelfish" {
		t.Fatalf("most: want=Angelfish got=%q", most)
	}
	if least != "Corydoras" {
		t.Fatalf("least: want=Corydoras got=%q", least)
	}
}

func TestExtremesEmpty(t *testing.T) {
	most, least := Extremes(map[string][]string{})
	if most != "" || least != "" {
		t.Fatalf("expected empty extremes, got most=%q least=%q", most, least)
	}
}
