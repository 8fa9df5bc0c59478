package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kelpgrid/driftwatch/pkg/model"
)

func TestMergeSources_ReplacesConfigOrigin(t *testing.T) {
	current := []model.SourceConfig{
		{Key: "alpha", Name: "Alpha old", Origin: model.OriginConfig},
		{Key: "gone", Name: "Removed upstream", Origin: model.OriginConfig},
	}
	fetched := []model.SourceConfig{
		{Key: "alpha", Name: "Alpha new", API: "https://alpha.example/v2"},
		{Key: "delta", Name: "Delta", API: "https://delta.example/api"},
	}

	out := MergeSources(current, fetched)

	assert.Len(t, out, 2)
	assert.Equal(t, "alpha", out[0].Key)
	assert.Equal(t, "Alpha new", out[0].Name)
	assert.Equal(t, "delta", out[1].Key)
	for _, src := range out {
		assert.Equal(t, model.OriginConfig, src.Origin)
	}
}

func TestMergeSources_CustomsSurvive(t *testing.T) {
	current := []model.SourceConfig{
		{Key: "alpha", Name: "Alpha", Origin: model.OriginConfig},
		{Key: "mine", Name: "Mine", Origin: model.OriginCustom},
		{Key: "mystery", Name: "Mystery", Origin: model.SourceOrigin("exotic")},
	}
	fetched := []model.SourceConfig{
		{Key: "beta", Name: "Beta"},
	}

	out := MergeSources(current, fetched)

	// Fetched order first, then surviving customs in their current order.
	assert.Len(t, out, 3)
	assert.Equal(t, "beta", out[0].Key)
	assert.Equal(t, "mine", out[1].Key)
	assert.Equal(t, model.OriginCustom, out[1].Origin)
	assert.Equal(t, "mystery", out[2].Key)
}

func TestMergeSources_CustomShadowsFetchedKey(t *testing.T) {
	current := []model.SourceConfig{
		{Key: "shared", Name: "My version", API: "https://mine.example", Origin: model.OriginCustom},
	}
	fetched := []model.SourceConfig{
		{Key: "shared", Name: "Upstream version", API: "https://upstream.example"},
	}

	out := MergeSources(current, fetched)

	assert.Len(t, out, 1)
	assert.Equal(t, "My version", out[0].Name)
	assert.Equal(t, model.OriginCustom, out[0].Origin)
}

func TestMergeSources_DisabledFlagKept(t *testing.T) {
	current := []model.SourceConfig{
		{Key: "alpha", Name: "Alpha", Origin: model.OriginConfig, Disabled: true},
	}
	fetched := []model.SourceConfig{
		{Key: "alpha", Name: "Alpha new"},
	}

	out := MergeSources(current, fetched)

	assert.Len(t, out, 1)
	assert.True(t, out[0].Disabled, "admin-set disabled flag should survive a refresh")
	assert.Equal(t, "Alpha new", out[0].Name)
}

func TestMergeSources_EmptyFetchedDropsConfigOrigin(t *testing.T) {
	current := []model.SourceConfig{
		{Key: "alpha", Origin: model.OriginConfig},
		{Key: "mine", Origin: model.OriginCustom},
	}

	out := MergeSources(current, nil)

	assert.Len(t, out, 1)
	assert.Equal(t, "mine", out[0].Key)
}

func TestMergeLives(t *testing.T) {
	current := []model.LiveConfig{
		{Key: "tv1", Name: "TV One old", Origin: model.OriginConfig, Disabled: true},
		{Key: "mine", Name: "My stream", Origin: model.OriginCustom},
	}
	fetched := []model.LiveConfig{
		{Key: "tv1", Name: "TV One", URL: "https://tv1.example/list.m3u"},
		{Key: "tv2", Name: "TV Two", URL: "https://tv2.example/list.m3u"},
	}

	out := MergeLives(current, fetched)

	assert.Len(t, out, 3)
	assert.Equal(t, "tv1", out[0].Key)
	assert.True(t, out[0].Disabled)
	assert.Equal(t, "tv2", out[1].Key)
	assert.Equal(t, "mine", out[2].Key)
	assert.Equal(t, model.OriginCustom, out[2].Origin)
}
