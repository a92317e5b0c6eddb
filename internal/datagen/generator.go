// Package datagen produces deterministic synthetic e-commerce funnel data
// for demos and fixture files. Same config, same bytes.
package datagen

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"goab/domain/core"
	"goab/domain/experiment"
	"goab/internal/randsrc"
)

// Dataset is the canonical in-memory representation of a generated funnel
// set: formatted rows for the tabular writers plus typed records for the
// analyzer.
//
// Columns:
// - user_id
// - group
// - timestamp
// - device
// - user_type
// - age_group
// - viewed_product
// - added_to_cart
// - began_checkout
// - converted
// - revenue
type Dataset struct {
	Headers []string
	Rows    [][]string // already formatted/rounded strings

	Records []experiment.Record
}

type Config struct {
	Users     int
	Seed      int64
	StartDate time.Time

	ControlLabel   string
	TreatmentLabel string

	// Revenue parameters for purchasers (gamma shape/scale)
	RevenueShape float64
	RevenueScale float64
}

func DefaultConfig() Config {
	return Config{
		Users:          2000,
		Seed:           42,
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ControlLabel:   "A",
		TreatmentLabel: "B",
		RevenueShape:   2,
		RevenueScale:   500,
	}
}

// funnelStage pairs a column with its per-group marginal rate. Stages are
// ordered; a later stage can only fire when the one before it did.
type funnelStage struct {
	name          string
	controlRate   float64
	treatmentRate float64
}

var funnel = []funnelStage{
	{"viewed_product", 0.80, 0.82},
	{"added_to_cart", 0.40, 0.45},
	{"began_checkout", 0.25, 0.28},
	{"converted", 0.12, 0.15},
}

type category struct {
	value  string
	weight float64
}

var (
	devices   = []category{{"mobile", 0.60}, {"desktop", 0.35}, {"tablet", 0.05}}
	userTypes = []category{{"new", 0.40}, {"returning", 0.60}}
	ageGroups = []category{{"18-24", 0.30}, {"25-34", 0.40}, {"35-44", 0.20}, {"45+", 0.10}}
)

func Generate(cfg Config) (*Dataset, error) {
	if cfg.Users <= 0 {
		return nil, fmt.Errorf("users must be > 0")
	}
	if cfg.ControlLabel == "" || cfg.TreatmentLabel == "" {
		return nil, fmt.Errorf("group labels must be non-empty")
	}
	if cfg.ControlLabel == cfg.TreatmentLabel {
		return nil, fmt.Errorf("group labels must differ")
	}
	if cfg.RevenueShape <= 0 || cfg.RevenueScale <= 0 {
		return nil, fmt.Errorf("revenue shape and scale must be > 0")
	}

	// One seeded stream drives every draw, so the whole set replays from
	// the seed alone.
	src := randsrc.New().SeededSource("datagen", cfg.Seed)
	rng := rand.New(src)
	revenue := distuv.Gamma{Alpha: cfg.RevenueShape, Beta: 1 / cfg.RevenueScale, Src: src}

	headers := []string{
		"user_id", "group", "timestamp",
		"device", "user_type", "age_group",
		"viewed_product", "added_to_cart", "began_checkout", "converted",
		"revenue",
	}

	rows := make([][]string, 0, cfg.Users)
	records := make([]experiment.Record, 0, cfg.Users)
	controlCount, treatmentCount := 0, 0

	for i := 0; i < cfg.Users; i++ {
		group := cfg.ControlLabel
		isTreatment := rng.Float64() < 0.5
		if isTreatment {
			group = cfg.TreatmentLabel
		}

		var userID string
		if isTreatment {
			userID = fmt.Sprintf("T_%06d", treatmentCount)
			treatmentCount++
		} else {
			userID = fmt.Sprintf("C_%06d", controlCount)
			controlCount++
		}

		device := pick(rng, devices)
		userType := pick(rng, userTypes)
		ageGroup := pick(rng, ageGroups)

		stages := drawFunnel(rng, isTreatment)
		converted := stages[len(stages)-1]

		amount := 0.0
		if converted {
			amount = revenue.Rand()
		}

		ts := cfg.StartDate.Add(time.Duration(rng.Int64N(30*24*3600)) * time.Second)

		row := []string{
			userID, group, ts.Format(time.RFC3339),
			device, userType, ageGroup,
			boolToCol(stages[0]), boolToCol(stages[1]), boolToCol(stages[2]), boolToCol(stages[3]),
			fToStr(amount, 2),
		}
		rows = append(rows, row)

		records = append(records, experiment.Record{
			UserID:    userID,
			Group:     group,
			Converted: converted,
			Segments: map[string]string{
				"device":    device,
				"user_type": userType,
				"age_group": ageGroup,
			},
			Revenue:   amount,
			Timestamp: core.NewTimestamp(ts),
		})
	}

	return &Dataset{
		Headers: headers,
		Rows:    rows,
		Records: records,
	}, nil
}

// drawFunnel walks the stages in order. The first stage is a plain Bernoulli
// draw; every later stage is drawn conditionally so its marginal rate still
// matches the configured one.
func drawFunnel(rng *rand.Rand, isTreatment bool) []bool {
	rateFor := func(s funnelStage) float64 {
		if isTreatment {
			return s.treatmentRate
		}
		return s.controlRate
	}

	stages := make([]bool, len(funnel))
	for i, stage := range funnel {
		if i == 0 {
			stages[i] = rng.Float64() < rateFor(stage)
			continue
		}
		if !stages[i-1] {
			continue
		}
		conditional := rateFor(stage) / rateFor(funnel[i-1])
		stages[i] = rng.Float64() < conditional
	}
	return stages
}

// pick draws one categorical value by cumulative weight.
func pick(rng *rand.Rand, categories []category) string {
	u := rng.Float64()
	cum := 0.0
	for _, c := range categories {
		cum += c.weight
		if u < cum {
			return c.value
		}
	}
	return categories[len(categories)-1].value
}

func boolToCol(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
