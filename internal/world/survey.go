package world

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"hexworld/internal/hex"
)

// Coverage summarizes generator output over a sampled region.
type Coverage struct {
	Sampled int            `yaml:"sampled"`
	Land    float64        `yaml:"land"`
	Water   float64        `yaml:"water"`
	Lakes   int            `yaml:"lakes"`
	Biomes  []BiomeShare   `yaml:"biomes"`
	Flags   map[string]int `yaml:"flags,omitempty"`
}

// BiomeShare is one biome's fraction of the sampled hexes.
type BiomeShare struct {
	Biome    BiomeMajor `yaml:"biome"`
	Count    int        `yaml:"count"`
	Fraction float64    `yaml:"fraction"`
}

type tally struct {
	sampled, water, lakes int
	biomes                [biomeMajorCount]int
	flags                 [len(flagNames)]int
}

func (t *tally) row(g *Generator, rect hex.Rect, row, stride int) {
	for col := rect.MinCol; col <= rect.MaxCol; col += stride {
		a := hex.FromOffset(col, row)
		rec := g.Get(a.Q, a.R)
		t.sampled++
		if rec.IsWater() {
			t.water++
		}
		if rec.Flags.Has(FlagLake) {
			t.lakes++
		}
		t.biomes[rec.Major]++
		for i := range t.flags {
			if rec.Flags&(1<<i) != 0 {
				t.flags[i]++
			}
		}
	}
}

func (t *tally) merge(o *tally) {
	t.sampled += o.sampled
	t.water += o.water
	t.lakes += o.lakes
	for i, c := range o.biomes {
		t.biomes[i] += c
	}
	for i, c := range o.flags {
		t.flags[i] += c
	}
}

// Survey samples every stride-th hex of rect in offset space on workers
// goroutines. The generator is immutable, so rows are sampled in any order;
// the result does not depend on workers. Biomes are listed most common first.
func Survey(ctx context.Context, g *Generator, rect hex.Rect, stride, workers int) (Coverage, error) {
	stride = max(stride, 1)
	workers = max(workers, 1)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan int, workers*2)
	results := make(chan *tally, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := &tally{}
			for row := range rows {
				if ctx.Err() != nil {
					continue
				}
				t.row(g, rect, row, stride)
			}
			results <- t
		}()
	}

feed:
	for row := rect.MinRow; row <= rect.MaxRow; row += stride {
		select {
		case rows <- row:
		case <-ctx.Done():
			break feed
		}
	}
	close(rows)
	wg.Wait()
	close(results)
	if err := ctx.Err(); err != nil {
		return Coverage{}, err
	}

	var total tally
	for t := range results {
		total.merge(t)
	}
	return total.coverage(), nil
}

func (t *tally) coverage() Coverage {
	cov := Coverage{Sampled: t.sampled, Lakes: t.lakes, Flags: make(map[string]int)}
	if t.sampled == 0 {
		return cov
	}
	n := float64(t.sampled)
	cov.Water = float64(t.water) / n
	cov.Land = 1 - cov.Water
	for b, c := range t.biomes {
		if c > 0 {
			cov.Biomes = append(cov.Biomes, BiomeShare{Biome: BiomeMajor(b), Count: c, Fraction: float64(c) / n})
		}
	}
	slices.SortFunc(cov.Biomes, func(a, b BiomeShare) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Biome, b.Biome)
	})
	for i, c := range t.flags {
		if c > 0 {
			cov.Flags[flagNames[i]] = c
		}
	}
	return cov
}
