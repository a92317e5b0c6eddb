package datagen

import (
	"context"
	"fmt"

	"goab/domain/experiment"
	"goab/ports"
)

// SyntheticSource serves a freshly generated dataset through the dataset
// source port, for demo runs that need no input file.
type SyntheticSource struct {
	cfg Config
}

var _ ports.DatasetSource = (*SyntheticSource)(nil)

func NewSyntheticSource(cfg Config) *SyntheticSource {
	return &SyntheticSource{cfg: cfg}
}

func (s *SyntheticSource) Load(_ context.Context) (*experiment.Dataset, error) {
	ds, err := Generate(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dataset: %w", err)
	}
	return experiment.NewDataset(ds.Records), nil
}

func (s *SyntheticSource) Describe() string {
	return fmt.Sprintf("synthetic funnel (%d users, seed %d)", s.cfg.Users, s.cfg.Seed)
}
