package main

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestCatalogDecode(t *testing.T) {
	raw, err := os.ReadFile("testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}
	var catalog catalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(catalog.Species) != 3 {
		t.Fatalf("species count: want=3 got=%d", len(catalog.Species))
	}

	betta := catalog.Species[1]
	if betta.Name != "Betta" {
		t.Fatalf("name: want=Betta got=%q", betta.Name)
	}
	if betta.Temperament != "semi_aggressive" {
		t.Fatalf("temperament: want=semi_aggressive got=%q", betta.Temperament)
	}

	input := betta.input()
	if input.ScientificName != "Betta splendens" {
		t.Fatalf("scientific name: got %q", input.ScientificName)
	}
	if input.MinTempC != 24 || input.MaxTempC != 28 {
		t.Fatalf("temp range: got %v-%v", input.MinTempC, input.MaxTempC)
	}
	if input.SchoolingMin != 1 {
		t.Fatalf("schooling min: got %d", input.SchoolingMin)
	}
}
