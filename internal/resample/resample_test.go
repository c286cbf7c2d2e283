package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResample_IdentityRate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOfN(rapid.Float32Range(-1, 1), 0, 500).Draw(t, "in")
		rate := rapid.IntRange(1000, 48000).Draw(t, "rate")

		var s State
		out := make([]float32, len(in))
		n := s.Resample(in, out, rate, rate)

		require.Equal(t, len(in), n)
		assert.Equal(t, in, out[:n])
	})
}

func TestResample_ChunkInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		whole := rapid.SliceOfN(rapid.Float32Range(-1, 1), 1, 400).Draw(t, "whole")
		rateIn := rapid.IntRange(4000, 48000).Draw(t, "rateIn")
		rateOut := rapid.IntRange(4000, 48000).Draw(t, "rateOut")

		var sWhole State
		outWhole := make([]float32, len(whole)*4+16)
		nWhole := sWhole.Resample(whole, outWhole, rateIn, rateOut)

		// Split the same input into two contiguous chunks and feed a fresh
		// state the same total output capacity, in two calls.
		splitAt := rapid.IntRange(0, len(whole)).Draw(t, "splitAt")
		chunk1 := whole[:splitAt]
		chunk2 := whole[splitAt:]

		var sSplit State
		outSplit := make([]float32, len(outWhole))
		n1 := sSplit.Resample(chunk1, outSplit, rateIn, rateOut)
		n2 := sSplit.Resample(chunk2, outSplit[n1:], rateIn, rateOut)

		assert.Equal(t, outWhole[:nWhole], outSplit[:n1+n2])
	})
}

func TestResample_Rate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 2000).Draw(t, "n")
		rateIn := rapid.IntRange(4000, 48000).Draw(t, "rateIn")
		rateOut := rapid.IntRange(4000, 48000).Draw(t, "rateOut")

		in := make([]float32, n)
		for i := range in {
			in[i] = float32(math.Sin(float64(i)))
		}

		var s State
		out := make([]float32, n*rateOut/rateIn+8)
		nOut := s.Resample(in, out, rateIn, rateOut)

		expected := n * rateOut / rateIn
		assert.InDelta(t, expected, nOut, 1)
	})
}

func TestResample_IdentityRateUpdatesPrev(t *testing.T) {
	var s State
	in := []float32{0.1, 0.2, 0.3}
	out := make([]float32, 3)
	s.Resample(in, out, 8000, 8000)
	assert.Equal(t, float32(0.3), s.Prev)
}

func TestResample_UpsampleDoublesLength(t *testing.T) {
	var s State
	in := make([]float32, 100)
	for i := range in {
		in[i] = float32(i)
	}
	out := make([]float32, 250)
	n := s.Resample(in, out, 8000, 16000)
	assert.InDelta(t, 200, n, 1)
}
