package factors

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// Pollutants is the fixed pollutant set, in report column order.
var Pollutants = []string{"CO2", "NOx", "PMx", "SOx", "HC", "CO"}

// Rates maps pollutant name to grams emitted per vehicle-kilometer.
type Rates map[string]float64

// Coefficients is the linear instantaneous emission model for a category:
// value = Speed*v + Accel*a + Const.
type Coefficients struct {
	Speed float64 `json:"speed"`
	Accel float64 `json:"accel"`
	Const float64 `json:"const"`
}

// Catalog holds per-category emission rates and model coefficients, plus the
// designated default entry used to backfill categories the static table does
// not know. Backfill happens at most once per category and logs a single
// notice; both the per-kilometer rates and the coefficient triple are filled
// from the same resolution, so the batch and streaming paths always agree on
// which categories were substituted.
//
// A Catalog is mutated only by the single control goroutine driving the
// simulation loop; it carries no locking.
type Catalog struct {
	rates    map[string]Rates
	models   map[string]Coefficients
	defRates Rates
	defModel Coefficients
}

// NewCatalog returns a catalog seeded with the built-in factor table.
func NewCatalog() *Catalog {
	c := &Catalog{
		rates:    make(map[string]Rates),
		models:   make(map[string]Coefficients),
		defRates: cloneRates(defaultRates),
		defModel: defaultModel,
	}
	for category, r := range builtinRates {
		c.rates[category] = cloneRates(r)
		c.models[category] = builtinModels[category]
	}
	return c
}

// Load reads a catalog from a JSON file. The file must carry a default entry;
// categories inherit nothing, each entry is complete on its own.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read factor file: %w", err)
	}

	var file struct {
		Default struct {
			Rates Rates        `json:"rates"`
			Model Coefficients `json:"model"`
		} `json:"default"`
		Categories map[string]struct {
			Rates Rates        `json:"rates"`
			Model Coefficients `json:"model"`
		} `json:"categories"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse factor file: %w", err)
	}
	if len(file.Default.Rates) == 0 {
		return nil, fmt.Errorf("factor file %s has no default entry", path)
	}

	c := &Catalog{
		rates:    make(map[string]Rates),
		models:   make(map[string]Coefficients),
		defRates: cloneRates(file.Default.Rates),
		defModel: file.Default.Model,
	}
	for category, entry := range file.Categories {
		c.rates[category] = cloneRates(entry.Rates)
		c.models[category] = entry.Model
	}
	return c, nil
}

// Resolve guarantees an entry exists for category. On first sight of an
// unknown category it inserts a copy of the default entry and emits a one-time
// notice; later calls for the same category are silent.
func (c *Catalog) Resolve(category string) {
	if _, ok := c.rates[category]; ok {
		return
	}
	c.rates[category] = cloneRates(c.defRates)
	c.models[category] = c.defModel
	log.WithField("category", category).Warn("Unknown vehicle category, using default emission factors")
}

// Rate returns the g/km factor for a pollutant of a category. The category is
// resolved first, so the lookup cannot miss.
func (c *Catalog) Rate(category, pollutant string) float64 {
	c.Resolve(category)
	return c.rates[category][pollutant]
}

// Model returns the linear-model coefficients for a category, resolving it
// first.
func (c *Catalog) Model(category string) Coefficients {
	c.Resolve(category)
	return c.models[category]
}

// Known reports whether a category already has an entry (static or
// backfilled).
func (c *Catalog) Known(category string) bool {
	_, ok := c.rates[category]
	return ok
}

func cloneRates(r Rates) Rates {
	out := make(Rates, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
