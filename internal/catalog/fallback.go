package catalog

import (
	"github.com/starford/hangar/internal/artifact"
	"github.com/starford/hangar/internal/models"
	"github.com/starford/hangar/internal/render"
)

type sample struct {
	chapter, section, slug, title string
	difficulty                    models.Difficulty
	minutes                       int
	body                          string
}

var samples = []sample{
	{"21", "20", "recirculation", "Recirculating System", models.Intermediate, 35, `# Recirculating System

The recirculation fans draw cabin air through filters and return it to the mix manifold.

- Recirculation fans
- HEPA filters
- Check valves

> Caution: do not operate the fans with the filters removed.`},
	{"24", "main", "ac-generation", "AC Power Generation", models.Beginner, 25, `# AC Power Generation

Each engine drives an **integrated drive generator** that supplies 115 V AC at 400 Hz.

- Generator control unit
- Bus power control unit`},
	{"28", "main", "tank-vent", "Tank Vent System and Fuel Indication", models.Intermediate, 40, `# Tank Vent System and Fuel Indication

The vent system keeps tank pressure near ambient during refuel and climb.

## Indication

Fuel quantity is measured by capacitance probes and shown on the *fuel synoptic*.`},
	{"29", "10", "main-hydraulics", "Main Hydraulic Power", models.Advanced, 50, "# Main Hydraulic Power\n\nEngine-driven pumps pressurize the system to `3000 psi`.\n\n- Engine-driven pumps\n- Electric motor pumps\n- Reservoirs"},
	{"32", "30", "extension-retraction", "Landing Gear Extension and Retraction", models.Intermediate, 45, `# Extension and Retraction

Gear is hydraulically retracted and locked by uplocks.

> Warning: install ground locks before working in the wheel wells.`},
	{"27", "main", "primary-controls", "Primary Flight Controls", models.Beginner, 30, `# Primary Flight Controls

Ailerons, elevators and the rudder control the aircraft about its three axes.`},
}

// Fallback returns the bundled sample set used when no build artifacts can
// be loaded. Bodies go through the same render pipeline as ingested files.
func Fallback() *artifact.Snapshot {
	p := render.NewPipeline(render.NewBasic(), render.NewSanitizer())
	docs := make([]models.Document, 0, len(samples))
	for _, s := range samples {
		docs = append(docs, models.Document{
			ID:              models.DocumentID(s.chapter, s.section, s.slug),
			Title:           s.title,
			Slug:            s.slug,
			Chapter:         s.chapter,
			Section:         s.section,
			Content:         p.Render(s.body),
			FrontMatter:     map[string]any{"title": s.title, "difficulty": string(s.difficulty), "duration": s.minutes},
			Difficulty:      s.difficulty,
			DurationMinutes: s.minutes,
			FilePath:        s.chapter + "/" + s.section + "/" + s.slug + ".md",
		})
	}
	snap, err := artifact.NewSnapshot(docs)
	if err != nil {
		panic(err)
	}
	return snap
}
