package meta

import (
	"strings"

	"github.com/eringen/sharehub/content"
)

// Step names the rule of a fallback chain that produced a value.
type Step string

// Thumbnail steps, in priority order.
const (
	StepThumbnail  Step = "thumbnail"
	StepMediaImage Step = "media-image"
	StepVideoURL   Step = "video-url"
	StepEmbedCode  Step = "embed-code"
)

// Domain steps, in priority order.
const (
	StepSiteURL       Step = "site-url"
	StepDeploymentURL Step = "deployment-url"
	StepHeaders       Step = "headers"
	StepDevelopment   Step = "development"
	StepProduction    Step = "production"
)

// StepNone marks a chain where no rule produced a value.
const StepNone Step = ""

// Resolution is the value chosen by a fallback chain and the step that chose
// it.
type Resolution struct {
	Value string `json:"value"`
	Step  Step   `json:"step"`
}

// OK reports whether a step produced the value.
func (r Resolution) OK() bool {
	return r.Step != StepNone
}

type thumbnailStep struct {
	step Step
	pick func(p content.Post) (string, bool)
}

// thumbnailSteps is evaluated in order; the first step that yields a value
// wins and later steps are not consulted.
var thumbnailSteps = []thumbnailStep{
	{StepThumbnail, func(p content.Post) (string, bool) {
		return p.ThumbnailURL, strings.TrimSpace(p.ThumbnailURL) != ""
	}},
	{StepMediaImage, func(p content.Post) (string, bool) {
		return p.MediaURL, strings.TrimSpace(p.MediaURL) != "" && p.MediaType == content.MediaTypeImage
	}},
	{StepVideoURL, func(p content.Post) (string, bool) {
		return ThumbnailFor(ExtractVideoID(p.VideoURL))
	}},
	{StepEmbedCode, func(p content.Post) (string, bool) {
		return ThumbnailFor(ExtractEmbedVideo(p.EmbedCode))
	}},
}

// ResolveThumbnail picks the preview image for a post. A Resolution with
// StepNone means no rule matched and the caller should use a placeholder.
func ResolveThumbnail(p content.Post) Resolution {
	for _, s := range thumbnailSteps {
		if v, ok := s.pick(p); ok {
			return Resolution{Value: v, Step: s.step}
		}
	}
	return Resolution{}
}
