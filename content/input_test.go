package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   CreatePostInput
		wantErr error
		errLike string
	}{
		{
			name:  "title and redirect",
			input: CreatePostInput{Title: "Hello", RedirectLink: "https://ads.example.com/go"},
		},
		{
			name:  "description and popunder",
			input: CreatePostInput{Description: "Body", PopunderAd: `<script src="//pop.example.com/a.js"></script>`},
		},
		{
			name:    "no text",
			input:   CreatePostInput{RedirectLink: "https://ads.example.com/go"},
			wantErr: ErrTitleOrDescription,
		},
		{
			name:    "no monetization",
			input:   CreatePostInput{Title: "Hello"},
			wantErr: ErrMonetization,
		},
		{
			name:    "bad video url",
			input:   CreatePostInput{Title: "Hello", RedirectLink: "https://ads.example.com", VideoURL: "not a url"},
			errLike: "videourl",
		},
		{
			name:    "title too long",
			input:   CreatePostInput{Title: strings.Repeat("a", 201), RedirectLink: "https://ads.example.com"},
			errLike: "title",
		},
		{
			name:    "unknown media type",
			input:   CreatePostInput{Title: "Hello", RedirectLink: "https://ads.example.com", MediaType: "audio"},
			errLike: "mediatype",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errLike != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errLike)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreatePostInputNormalize(t *testing.T) {
	in := CreatePostInput{Title: "  Hi  ", VideoURL: " https://youtu.be/dQw4w9WgXcQ \n"}
	in.Normalize()
	assert.Equal(t, "Hi", in.Title)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", in.VideoURL)
}

func TestLinkTitle(t *testing.T) {
	assert.Equal(t, "Title", CreatePostInput{Title: "Title", Description: "desc"}.LinkTitle())
	long := strings.Repeat("é", 60)
	assert.Equal(t, strings.Repeat("é", 50), CreatePostInput{Description: long}.LinkTitle())
	assert.Equal(t, "Untitled Post", CreatePostInput{}.LinkTitle())
}

func TestMediaTypeFor(t *testing.T) {
	assert.Equal(t, MediaTypeVideo, MediaTypeFor("video/mp4"))
	assert.Equal(t, MediaTypeVideo, MediaTypeFor("VIDEO/webm"))
	assert.Equal(t, MediaTypeImage, MediaTypeFor("image/png"))
	assert.Equal(t, MediaTypeImage, MediaTypeFor(""))
}

func TestPostFromInput(t *testing.T) {
	in := CreatePostInput{Title: "T", MediaURL: "https://cdn.example.com/a.jpg", MediaType: MediaTypeImage}
	p := in.Post()
	assert.Equal(t, "T", p.Title)
	assert.Equal(t, MediaTypeImage, p.MediaType)
	assert.Empty(t, p.ID)
}
