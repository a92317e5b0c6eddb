// Package randsrc provides the production RNGPort implementation: PCG streams
// selected by a namespaced seed so concurrent consumers never share state.
package randsrc

import (
	"math/rand/v2"

	"goab/ports"
)

// Provider derives independent PCG streams from named seeds.
type Provider struct{}

var _ ports.RNGPort = (*Provider)(nil)

func New() *Provider { return &Provider{} }

// SeededSource returns a deterministic source for a named operation. The name
// selects the PCG stream, so two operations sharing a base seed still draw
// from distinct sequences.
func (p *Provider) SeededSource(name string, seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), uint64(hashString(name)))
}

// hashString implements the djb2 string hash.
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
