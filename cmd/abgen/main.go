package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goab/internal/config"
	"goab/internal/datagen"
)

func main() {
	out := flag.String("out", "ab_test_funnel.csv", "output file path")
	users := flag.Int("users", 0, "number of users (default from config)")
	format := flag.String("format", "", "output format: csv or xlsx (default inferred from -out)")
	seed := flag.Int64("seed", 0, "RNG seed (default from config)")
	start := flag.String("start", "2025-01-01", "start date (YYYY-MM-DD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	startDate, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -start (expected YYYY-MM-DD):", err)
		os.Exit(2)
	}

	genCfg := datagen.DefaultConfig()
	genCfg.Users = cfg.Generator.Users
	genCfg.Seed = cfg.Generator.Seed
	genCfg.StartDate = startDate
	genCfg.ControlLabel = cfg.Analysis.ControlLabel
	genCfg.TreatmentLabel = cfg.Analysis.TreatmentLabel

	// Explicit flags win over config.
	var usersSet, seedSet bool
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "users":
			usersSet = true
		case "seed":
			seedSet = true
		}
	})
	if usersSet {
		if *users <= 0 {
			fmt.Fprintln(os.Stderr, "users must be > 0")
			os.Exit(2)
		}
		genCfg.Users = *users
	}
	if seedSet {
		genCfg.Seed = *seed
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".xlsx":
			fmtName = "xlsx"
		case ".csv":
			fmtName = "csv"
		default:
			fmtName = cfg.Generator.OutputFormat
		}
	}

	ds, err := datagen.Generate(genCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}

	switch fmtName {
	case "csv":
		if err := datagen.WriteCSV(*out, ds); err != nil {
			fmt.Fprintln(os.Stderr, "error writing csv:", err)
			os.Exit(1)
		}
	case "xlsx":
		if err := datagen.WriteXLSX(*out, ds); err != nil {
			fmt.Fprintln(os.Stderr, "error writing xlsx:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}

	conversions := 0
	for _, r := range ds.Records {
		if r.Converted {
			conversions++
		}
	}
	fmt.Printf("Synthetic funnel written: %s\n", *out)
	fmt.Printf("Users: %d | Conversions: %d | Columns: %d\n", len(ds.Records), conversions, len(ds.Headers))
}
