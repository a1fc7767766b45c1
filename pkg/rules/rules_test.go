package rules

import (
	"testing"

	"github.com/canvion/canvion/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanConnectConcreteKey(t *testing.T) {
	assert.True(t, CanConnect(models.NodeTypeTextInput, models.NodeTypeTextToImage))
	assert.True(t, CanConnect(models.NodeTypeTextToImage, models.NodeTypeImageToVideo))
	assert.True(t, CanConnect(models.NodeTypeVideoInput, models.NodeTypePreviewOutput))
}

func TestCanConnectViaAlias(t *testing.T) {
	// Granted by the image alias bucket, not the concrete repaint entry.
	assert.True(t, CanConnect(models.NodeTypeImageRepaint, models.NodeTypeLLMImageDescribe))

	// Granted by the text alias bucket.
	assert.True(t, CanConnect(models.NodeTypeLLMStoryboard, models.NodeTypeTextToVideo))
}

func TestCanConnectRejects(t *testing.T) {
	assert.False(t, CanConnect(models.NodeTypePreviewOutput, models.NodeTypeTextToImage))
	assert.False(t, CanConnect(models.NodeTypeVideoInput, models.NodeTypeTextToImage))
	assert.False(t, CanConnect(models.NodeTypeAudioInput, models.NodeTypeImageToVideo))
	assert.False(t, CanConnect("bogus", models.NodeTypePreviewOutput))
}

func TestDownstreamOptionsDeduplicates(t *testing.T) {
	opts := DownstreamOptions(models.NodeTypeTextToImage)
	require.NotEmpty(t, opts)

	seen := make(map[models.NodeType]bool, len(opts))
	for _, o := range opts {
		assert.False(t, seen[o], "duplicate option %s", o)

		seen[o] = true
	}

	// The alias buckets widen the concrete table.
	assert.Contains(t, opts, models.NodeTypeGridPreview)
	assert.Contains(t, opts, models.NodeTypeLLMStoryboard)
}

func TestDownstreamOptionsUnknownType(t *testing.T) {
	assert.Empty(t, DownstreamOptions("bogus"))
}

func TestUpstreamOptions(t *testing.T) {
	opts := UpstreamOptions(models.NodeTypePreviewOutput)
	assert.Contains(t, opts, models.NodeTypeTextInput)
	assert.Contains(t, opts, models.NodeTypeImageToVideo)
	assert.NotContains(t, opts, models.NodeTypePreviewOutput)

	video := UpstreamOptions(models.NodeTypeImageToVideo)
	assert.Contains(t, video, models.NodeTypeTextToImage)
	assert.Contains(t, video, models.NodeTypeImageInput)
}

func TestConfigLookup(t *testing.T) {
	cfg, ok := Config(models.NodeTypeTextToImage)
	require.True(t, ok)
	assert.Equal(t, CategoryGenerate, cfg.Category)
	assert.True(t, cfg.HasInput)
	assert.True(t, cfg.HasOutput)
	assert.Equal(t, "text", cfg.InputType)
	assert.Equal(t, "image", cfg.OutputType)

	_, ok = Config("bogus")
	assert.False(t, ok)
}

func TestAliases(t *testing.T) {
	assert.ElementsMatch(t, []string{AliasImage, AliasImageGen}, Aliases(models.NodeTypeTextToImage))
	assert.ElementsMatch(t, []string{AliasText}, Aliases(models.NodeTypeLLMPromptEnhance))
	assert.Empty(t, Aliases(models.NodeTypePreviewOutput))
}
