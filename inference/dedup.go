package inference

import (
	"context"

	boom "github.com/tylertreat/BoomFilters"

	"github.com/cayleygraph/rdfsail/sail"
	"github.com/cayleygraph/rdfsail/triple"
)

// Deduping drops statements that are already in the base model, and
// repeated statements within one run, keeping the first occurrence.
type Deduping struct {
	Inner Inferencer
	// FalsePositiveRate of the bloom filter placed in front of the exact set.
	FalsePositiveRate float64
}

func NewDeduping(inner Inferencer) *Deduping {
	return &Deduping{Inner: inner, FalsePositiveRate: 0.01}
}

func (d *Deduping) Infer(ctx context.Context, m *sail.Model) ([]triple.Statement, error) {
	stmts, err := d.Inner.Infer(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Dedup(m, stmts, d.FalsePositiveRate), nil
}

// Dedup returns the statements of stmts that are not in base, once each and
// in their original order.
func Dedup(base *sail.Model, stmts []triple.Statement, fpRate float64) []triple.Statement {
	if len(stmts) == 0 {
		return nil
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.01
	}
	bloom := boom.NewBloomFilter(uint(len(stmts)), fpRate)
	seen := make(map[triple.Key]struct{}, len(stmts))
	out := make([]triple.Statement, 0, len(stmts))
	dropped := 0
	for _, st := range stmts {
		k := st.Key()
		kb := []byte(k)
		if bloom.Test(kb) {
			if _, ok := seen[k]; ok {
				dropped++
				continue
			}
		}
		if base != nil && base.Contains(st) {
			dropped++
			continue
		}
		bloom.Add(kb)
		seen[k] = struct{}{}
		out = append(out, st)
	}
	duplicates.Add(float64(dropped))
	return out
}
