package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func images(sizes ...int64) []PageImage {
	imgs := make([]PageImage, len(sizes))
	for i, s := range sizes {
		imgs[i] = PageImage{
			Path: fmt.Sprintf("/pages/%03d.png", i+1),
			Name: fmt.Sprintf("%03d.png", i+1),
			Size: s,
		}
	}
	return imgs
}

const mb = int64(1 << 20)

func TestMakeBatchesGreedyPacking(t *testing.T) {
	batches, err := MakeBatches(images(mb, mb, mb), 2*mb, 0)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Len(t, batches[0].Images, 2)
	assert.Equal(t, 2*mb, batches[0].Size)
	assert.Len(t, batches[1].Images, 1)
	assert.Equal(t, mb, batches[1].Size)
}

func TestMakeBatchesPreservesOrderAndTotal(t *testing.T) {
	input := images(3*mb, mb, 2*mb, 2*mb, mb, mb, 4*mb)
	batches, err := MakeBatches(input, 5*mb, 0)
	require.NoError(t, err)

	var total int64
	var flat []PageImage
	for _, b := range batches {
		require.NotEmpty(t, b.Images)
		var sum int64
		for _, img := range b.Images {
			sum += img.Size
		}
		assert.Equal(t, b.Size, sum)
		assert.LessOrEqual(t, b.Size, 5*mb)
		total += b.Size
		flat = append(flat, b.Images...)
	}

	assert.Equal(t, input, flat)
	assert.Equal(t, int64(14)*mb, total)
}

func TestMakeBatchesCountCeiling(t *testing.T) {
	batches, err := MakeBatches(images(1, 1, 1, 1, 1), 100, 2)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0].Images, 2)
	assert.Len(t, batches[1].Images, 2)
	assert.Len(t, batches[2].Images, 1)
}

func TestMakeBatchesRejectsOversizeImage(t *testing.T) {
	_, err := MakeBatches(images(mb, 6*mb, mb), 5*mb, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002.png")
}

func TestMakeBatchesDeterministic(t *testing.T) {
	input := images(2*mb, mb, mb, 3*mb, mb)
	first, err := MakeBatches(input, 4*mb, 0)
	require.NoError(t, err)
	second, err := MakeBatches(input, 4*mb, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMakeBatchesEmptyInput(t *testing.T) {
	batches, err := MakeBatches(nil, 5*mb, 0)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestProxyURL(t *testing.T) {
	assert.Equal(t, "/proxy/api/imgchest/chapter/vj4jew6w978", ProxyURL("vj4jew6w978"))
	assert.Equal(t, "https://imgchest.com/p/vj4jew6w978", AlbumURL("vj4jew6w978"))
}
