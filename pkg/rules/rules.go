// Package rules holds the static, type-directed connection compatibility
// tables for canvas nodes. Lookups are pure; unknown types yield empty
// option sets rather than errors.
package rules

import (
	"github.com/canvion/canvion/pkg/models"
)

// Category groups node types for the selector UI.
type Category string

const (
	CategoryInput    Category = "input"
	CategoryGenerate Category = "generate"
	CategoryLLM      Category = "llm"
	CategoryEdit     Category = "edit"
	CategoryOutput   Category = "output"
)

// NodeConfig is the static shape of a node type: which ports it has and what
// media kind flows through them.
type NodeConfig struct {
	Category   Category
	HasInput   bool
	HasOutput  bool
	InputType  string
	OutputType string
}

var nodeConfigs = map[models.NodeType]NodeConfig{
	models.NodeTypeTextInput:        {Category: CategoryInput, HasOutput: true, OutputType: "text"},
	models.NodeTypeImageInput:       {Category: CategoryInput, HasOutput: true, OutputType: "image"},
	models.NodeTypeVideoInput:       {Category: CategoryInput, HasOutput: true, OutputType: "video"},
	models.NodeTypeAudioInput:       {Category: CategoryInput, HasOutput: true, OutputType: "audio"},
	models.NodeTypeTextToImage:      {Category: CategoryGenerate, HasInput: true, HasOutput: true, InputType: "text", OutputType: "image"},
	models.NodeTypeImageToImage:     {Category: CategoryGenerate, HasInput: true, HasOutput: true, InputType: "image", OutputType: "image"},
	models.NodeTypeTextToVideo:      {Category: CategoryGenerate, HasInput: true, HasOutput: true, InputType: "text", OutputType: "video"},
	models.NodeTypeImageToVideo:     {Category: CategoryGenerate, HasInput: true, HasOutput: true, InputType: "image", OutputType: "video"},
	models.NodeTypeLLMPromptEnhance: {Category: CategoryLLM, HasInput: true, HasOutput: true, InputType: "text", OutputType: "text"},
	models.NodeTypeLLMImageDescribe: {Category: CategoryLLM, HasInput: true, HasOutput: true, InputType: "image", OutputType: "text"},
	models.NodeTypeLLMContentExpand: {Category: CategoryLLM, HasInput: true, HasOutput: true, InputType: "text", OutputType: "text"},
	models.NodeTypeLLMStoryboard:    {Category: CategoryLLM, HasInput: true, HasOutput: true, InputType: "text", OutputType: "text"},
	models.NodeTypeImageRepaint:     {Category: CategoryEdit, HasInput: true, HasOutput: true, InputType: "image", OutputType: "image"},
	models.NodeTypeImageErase:       {Category: CategoryEdit, HasInput: true, HasOutput: true, InputType: "image", OutputType: "image"},
	models.NodeTypeImageUpscale:     {Category: CategoryEdit, HasInput: true, HasOutput: true, InputType: "image", OutputType: "image"},
	models.NodeTypeImageCutout:      {Category: CategoryEdit, HasInput: true, HasOutput: true, InputType: "image", OutputType: "image"},
	models.NodeTypeImageExpand:      {Category: CategoryEdit, HasInput: true, HasOutput: true, InputType: "image", OutputType: "image"},
	models.NodeTypePreviewOutput:    {Category: CategoryOutput, HasInput: true, InputType: "any"},
	models.NodeTypeGridPreview:      {Category: CategoryOutput, HasInput: true, InputType: "image"},
}

// Config returns the static configuration for a node type. The second return
// is false for unknown types.
func Config(t models.NodeType) (NodeConfig, bool) {
	cfg, ok := nodeConfigs[t]

	return cfg, ok
}

// Category alias keys. A concrete node type resolves to zero or more alias
// buckets; both the exact type and its aliases may independently grant
// connectivity.
const (
	AliasText     = "text"
	AliasImage    = "image"
	AliasImageGen = "image-gen"
	AliasVideo    = "video"
	AliasVideoGen = "video-gen"
	AliasAudio    = "audio"
)

var aliases = map[models.NodeType][]string{
	models.NodeTypeTextInput:        {AliasText},
	models.NodeTypeImageInput:       {AliasImage},
	models.NodeTypeVideoInput:       {AliasVideo},
	models.NodeTypeAudioInput:       {AliasAudio},
	models.NodeTypeTextToImage:      {AliasImage, AliasImageGen},
	models.NodeTypeImageToImage:     {AliasImage, AliasImageGen},
	models.NodeTypeImageRepaint:     {AliasImage, AliasImageGen},
	models.NodeTypeImageErase:       {AliasImage, AliasImageGen},
	models.NodeTypeImageUpscale:     {AliasImage, AliasImageGen},
	models.NodeTypeImageCutout:      {AliasImage, AliasImageGen},
	models.NodeTypeImageExpand:      {AliasImage, AliasImageGen},
	models.NodeTypeTextToVideo:      {AliasVideo, AliasVideoGen},
	models.NodeTypeImageToVideo:     {AliasVideo, AliasVideoGen},
	models.NodeTypeLLMPromptEnhance: {AliasText},
	models.NodeTypeLLMImageDescribe: {AliasText},
	models.NodeTypeLLMContentExpand: {AliasText},
	models.NodeTypeLLMStoryboard:    {AliasText},
}

// Aliases returns the category buckets a concrete node type belongs to.
func Aliases(t models.NodeType) []string {
	return aliases[t]
}

// downstream maps a source key (concrete type or alias bucket) to the node
// types that may be connected below it.
var downstream = map[string][]models.NodeType{
	string(models.NodeTypeTextInput): {
		models.NodeTypeTextToImage,
		models.NodeTypeTextToVideo,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMContentExpand,
		models.NodeTypeLLMStoryboard,
		models.NodeTypePreviewOutput,
	},
	AliasText: {
		models.NodeTypeTextToImage,
		models.NodeTypeTextToVideo,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMContentExpand,
		models.NodeTypeLLMStoryboard,
		models.NodeTypePreviewOutput,
	},
	string(models.NodeTypeImageInput): {
		models.NodeTypeImageToImage,
		models.NodeTypeImageToVideo,
		models.NodeTypeLLMImageDescribe,
		models.NodeTypeLLMStoryboard,
		models.NodeTypeImageUpscale,
		models.NodeTypeImageCutout,
		models.NodeTypeImageRepaint,
		models.NodeTypeImageErase,
		models.NodeTypeImageExpand,
		models.NodeTypePreviewOutput,
	},
	AliasImage: {
		models.NodeTypeImageToImage,
		models.NodeTypeImageToVideo,
		models.NodeTypeLLMImageDescribe,
		models.NodeTypeLLMStoryboard,
		models.NodeTypeImageUpscale,
		models.NodeTypeImageCutout,
		models.NodeTypeImageRepaint,
		models.NodeTypeImageErase,
		models.NodeTypeImageExpand,
		models.NodeTypePreviewOutput,
	},
	AliasImageGen: {
		models.NodeTypeImageToImage,
		models.NodeTypeImageToVideo,
		models.NodeTypeLLMImageDescribe,
		models.NodeTypePreviewOutput,
	},
	string(models.NodeTypeVideoInput): {models.NodeTypePreviewOutput},
	string(models.NodeTypeAudioInput): {models.NodeTypePreviewOutput},
	AliasAudio:                        {models.NodeTypePreviewOutput},
	AliasVideo:                        {models.NodeTypePreviewOutput},
	AliasVideoGen:                     {models.NodeTypePreviewOutput},
	string(models.NodeTypeTextToImage): {
		models.NodeTypeImageToImage,
		models.NodeTypeImageToVideo,
		models.NodeTypeImageRepaint,
		models.NodeTypeImageErase,
		models.NodeTypeImageUpscale,
		models.NodeTypeImageCutout,
		models.NodeTypeImageExpand,
		models.NodeTypeLLMImageDescribe,
		models.NodeTypePreviewOutput,
		models.NodeTypeGridPreview,
	},
	string(models.NodeTypeImageToImage): {
		models.NodeTypeImageToVideo,
		models.NodeTypeImageRepaint,
		models.NodeTypeImageUpscale,
		models.NodeTypePreviewOutput,
	},
	string(models.NodeTypeTextToVideo):  {models.NodeTypePreviewOutput},
	string(models.NodeTypeImageToVideo): {models.NodeTypePreviewOutput},
	string(models.NodeTypeLLMPromptEnhance): {
		models.NodeTypeTextToImage,
		models.NodeTypeTextToVideo,
		models.NodeTypePreviewOutput,
	},
	string(models.NodeTypeLLMImageDescribe): {
		models.NodeTypeTextToImage,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypePreviewOutput,
	},
	string(models.NodeTypeLLMContentExpand): {
		models.NodeTypeTextToImage,
		models.NodeTypeTextToVideo,
		models.NodeTypePreviewOutput,
	},
	string(models.NodeTypeLLMStoryboard): {
		models.NodeTypeTextToImage,
		models.NodeTypePreviewOutput,
		models.NodeTypeGridPreview,
	},
	string(models.NodeTypeImageRepaint): {models.NodeTypeImageToVideo, models.NodeTypePreviewOutput},
	string(models.NodeTypeImageErase):   {models.NodeTypeImageToVideo, models.NodeTypePreviewOutput},
	string(models.NodeTypeImageUpscale): {models.NodeTypeImageToVideo, models.NodeTypePreviewOutput},
	string(models.NodeTypeImageCutout):  {models.NodeTypeImageToVideo, models.NodeTypePreviewOutput},
	string(models.NodeTypeImageExpand):  {models.NodeTypeImageToVideo, models.NodeTypePreviewOutput},
}

// upstream maps a target key to the node types that may feed into it.
var upstream = map[string][]models.NodeType{
	string(models.NodeTypeTextInput): {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeVideoInput,
		models.NodeTypeTextToImage,
		models.NodeTypeImageToImage,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMImageDescribe,
		models.NodeTypeLLMContentExpand,
	},
	string(models.NodeTypeVideoInput): {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeTextToImage,
		models.NodeTypeImageToImage,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMContentExpand,
	},
	AliasVideo: {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeTextToImage,
		models.NodeTypeImageToImage,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMContentExpand,
	},
	string(models.NodeTypeImageInput): {
		models.NodeTypeTextInput,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMContentExpand,
	},
	AliasImage: {
		models.NodeTypeTextInput,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMContentExpand,
	},
	AliasImageGen: {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeLLMPromptEnhance,
	},
	string(models.NodeTypeTextToImage): {
		models.NodeTypeTextInput,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMImageDescribe,
	},
	string(models.NodeTypeImageToImage): {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeTextToImage,
	},
	string(models.NodeTypeTextToVideo): {
		models.NodeTypeTextInput,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMContentExpand,
	},
	string(models.NodeTypeImageToVideo): {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeTextToImage,
		models.NodeTypeImageToImage,
	},
	string(models.NodeTypeLLMStoryboard): {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeTextToImage,
		models.NodeTypeImageToImage,
		models.NodeTypeLLMPromptEnhance,
		models.NodeTypeLLMImageDescribe,
		models.NodeTypeLLMContentExpand,
	},
	string(models.NodeTypePreviewOutput): {
		models.NodeTypeTextInput,
		models.NodeTypeImageInput,
		models.NodeTypeVideoInput,
		models.NodeTypeTextToImage,
		models.NodeTypeImageToImage,
		models.NodeTypeTextToVideo,
		models.NodeTypeImageToVideo,
	},
}

// sourceKeys resolves a node type to its lookup keys: the concrete type first,
// then every alias bucket it belongs to.
func sourceKeys(t models.NodeType) []string {
	keys := make([]string, 0, 1+len(aliases[t]))
	keys = append(keys, string(t))
	keys = append(keys, aliases[t]...)

	return keys
}

// CanConnect reports whether an edge from sourceType to targetType is
// permitted. Compatibility granted by either the concrete type or any of its
// alias buckets is sufficient.
func CanConnect(sourceType, targetType models.NodeType) bool {
	for _, key := range sourceKeys(sourceType) {
		for _, allowed := range downstream[key] {
			if allowed == targetType {
				return true
			}
		}
	}

	return false
}

// DownstreamOptions returns the node types that may be created below the
// given source type, deduplicated across the concrete type and its aliases.
func DownstreamOptions(sourceType models.NodeType) []models.NodeType {
	return union(downstream, sourceKeys(sourceType))
}

// UpstreamOptions returns the node types that may be created above the given
// target type.
func UpstreamOptions(targetType models.NodeType) []models.NodeType {
	return union(upstream, sourceKeys(targetType))
}

func union(table map[string][]models.NodeType, keys []string) []models.NodeType {
	seen := make(map[models.NodeType]bool)
	out := make([]models.NodeType, 0)

	for _, key := range keys {
		for _, t := range table[key] {
			if !seen[t] {
				seen[t] = true

				out = append(out, t)
			}
		}
	}

	return out
}
