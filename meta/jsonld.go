package meta

import "encoding/json"

// ArticleJSONLD returns a Schema.org Article JSON-LD string for md.
func ArticleJSONLD(md Metadata) string {
	org := map[string]string{
		"@type": "Organization",
		"name":  md.SiteName,
	}
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Article",
		"headline":    md.Title,
		"description": md.Description,
		"image":       []string{md.Image},
		"author":      org,
		"publisher": map[string]interface{}{
			"@type": "Organization",
			"name":  md.SiteName,
			"logo": map[string]string{
				"@type": "ImageObject",
				"url":   JoinURL(md.Domain.Value, "logo.png"),
			},
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   md.URL,
		},
	}
	if md.PublishedTime != "" {
		data["datePublished"] = md.PublishedTime
		data["dateModified"] = md.PublishedTime
	}
	if md.Video != nil {
		data["video"] = map[string]interface{}{
			"@type":        "VideoObject",
			"name":         md.Title,
			"description":  md.Description,
			"thumbnailUrl": md.Image,
			"contentUrl":   md.Video.URL,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
