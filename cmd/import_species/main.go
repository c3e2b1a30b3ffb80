package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/aquasync-backend/internal/app"
	"github.com/yungbote/aquasync-backend/internal/pkg/dbctx"
	"github.com/yungbote/aquasync-backend/internal/services"
)

type catalogFile struct {
	Species []catalogEntry `yaml:"species"`
}

type catalogEntry struct {
	Name           string  `yaml:"name"`
	ScientificName string  `yaml:"scientific_name"`
	WaterType      string  `yaml:"water_type"`
	Temperament    string  `yaml:"temperament"`
	MinTempC       float64 `yaml:"min_temp_c"`
	MaxTempC       float64 `yaml:"max_temp_c"`
	MinPH          float64 `yaml:"min_ph"`
	MaxPH          float64 `yaml:"max_ph"`
	AdultSizeCM    float64 `yaml:"adult_size_cm"`
	MinTankLiters  float64 `yaml:"min_tank_liters"`
	SchoolingMin   int     `yaml:"schooling_min"`
	Diet           string  `yaml:"diet"`
	Description    string  `yaml:"description"`
}

func (e catalogEntry) input() services.SpeciesInput {
	return services.SpeciesInput{
		Name:           e.Name,
		ScientificName: e.ScientificName,
		WaterType:      e.WaterType,
		Temperament:    e.Temperament,
		MinTempC:       e.MinTempC,
		MaxTempC:       e.MaxTempC,
		MinPH:          e.MinPH,
		MaxPH:          e.MaxPH,
		AdultSizeCM:    e.AdultSizeCM,
		MinTankLiters:  e.MinTankLiters,
		SchoolingMin:   e.SchoolingMin,
		Diet:           e.Diet,
		Description:    e.Description,
	}
}

func main() {
	var file string
	var dryRun bool
	var buildMatrix bool
	flag.StringVar(&file, "file", "species.yaml", "path to the YAML species catalog")
	flag.BoolVar(&dryRun, "dry-run", false, "print planned changes without writing")
	flag.BoolVar(&buildMatrix, "build-matrix", false, "queue a compatibility matrix build after importing")
	flag.Parse()

	raw, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("read catalog: %v\n", err)
		os.Exit(1)
	}
	var catalog catalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		fmt.Printf("parse catalog: %v\n", err)
		os.Exit(1)
	}
	if len(catalog.Species) == 0 {
		fmt.Println("catalog has no species entries")
		return
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()
	dbc := dbctx.New(ctx)

	created, updated, skipped := 0, 0, 0
	for _, entry := range catalog.Species {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			fmt.Println("skipping entry with empty name")
			skipped++
			continue
		}

		existing, err := application.Repos.Species.GetByName(dbc, name)
		if err != nil {
			fmt.Printf("lookup %q: %v\n", name, err)
			os.Exit(1)
		}

		if dryRun {
			if existing == nil {
				fmt.Printf("would create %q\n", name)
			} else {
				fmt.Printf("would update %q\n", name)
			}
			continue
		}

		// The service layer validates water type, temperament, diet and the
		// numeric ranges, so a bad row is reported and skipped, never written.
		if existing == nil {
			if _, err := application.Services.Species.Create(ctx, entry.input()); err != nil {
				fmt.Printf("create %q: %v\n", name, err)
				skipped++
				continue
			}
			created++
		} else {
			if _, err := application.Services.Species.Update(ctx, existing.ID, entry.input()); err != nil {
				fmt.Printf("update %q: %v\n", name, err)
				skipped++
				continue
			}
			updated++
		}
	}

	fmt.Printf("catalog import done: %d created, %d updated, %d skipped\n", created, updated, skipped)

	if buildMatrix && !dryRun {
		job, err := application.Services.Matrix.Trigger(ctx)
		if err != nil {
			fmt.Printf("queue matrix build: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("matrix build queued: %s\n", job.ID)
	}
}
