package fmv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaticProviderLookup(t *testing.T) {
	p := NewStaticProvider()
	cutoff := time.Date(2018, time.January, 31, 0, 0, 0, 0, time.UTC)
	p.Set("INF179K01608", cutoff, 123.45)

	nav, ok := p.FMV("INF179K01608", cutoff)
	assert.True(t, ok)
	assert.InDelta(t, 123.45, nav, 1e-9)

	_, ok = p.FMV("INF179K01608", cutoff.AddDate(0, 0, 1))
	assert.False(t, ok)

	_, ok = p.FMV("INF846K01EW2", cutoff)
	assert.False(t, ok)
}

func TestStaticProviderOverwrite(t *testing.T) {
	p := NewStaticProvider()
	cutoff := time.Date(2018, time.January, 31, 0, 0, 0, 0, time.UTC)
	p.Set("INF179K01608", cutoff, 100)
	p.Set("INF179K01608", cutoff, 110)

	nav, ok := p.FMV("INF179K01608", cutoff)
	assert.True(t, ok)
	assert.InDelta(t, 110.0, nav, 1e-9)
}
