package content

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTitleOrDescription = errors.New("either title or description is required")
	ErrMonetization       = errors.New("at least one monetization method is required (redirect link or popunder ad)")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreatePostInput is the form payload submitted to create a post. Uploaded
// file URLs are filled in by the handler before Validate is called.
type CreatePostInput struct {
	Title        string    `form:"title" validate:"max=200"`
	Description  string    `form:"description" validate:"max=2000"`
	EmbedCode    string    `form:"embed_code" validate:"max=4000"`
	VideoURL     string    `form:"video_url" validate:"omitempty,url,max=2048"`
	RedirectLink string    `form:"redirect_link" validate:"omitempty,url,max=2048"`
	PopunderAd   string    `form:"popunder_ad" validate:"max=4000"`
	MediaURL     string    `form:"-" validate:"omitempty,max=2048"`
	MediaType    MediaType `form:"-" validate:"omitempty,oneof=image video"`
	ThumbnailURL string    `form:"-" validate:"omitempty,max=2048"`
}

// Normalize trims surrounding whitespace from every text field.
func (in *CreatePostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.EmbedCode = strings.TrimSpace(in.EmbedCode)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	in.RedirectLink = strings.TrimSpace(in.RedirectLink)
	in.PopunderAd = strings.TrimSpace(in.PopunderAd)
}

// Validate checks field formats and the cross-field rules of the create form.
func (in CreatePostInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid %s: failed %q rule", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return err
	}
	if in.Title == "" && in.Description == "" {
		return ErrTitleOrDescription
	}
	if in.RedirectLink == "" && in.PopunderAd == "" {
		return ErrMonetization
	}
	return nil
}

// Post converts the input into a Post record. ID and CreatedAt are left for
// the store to assign.
func (in CreatePostInput) Post() Post {
	return Post{
		Title:        in.Title,
		Description:  in.Description,
		EmbedCode:    in.EmbedCode,
		VideoURL:     in.VideoURL,
		MediaURL:     in.MediaURL,
		MediaType:    in.MediaType,
		ThumbnailURL: in.ThumbnailURL,
		RedirectLink: in.RedirectLink,
		PopunderAd:   in.PopunderAd,
	}
}

// LinkTitle is the label stored with a generated link: the title, else the
// first 50 characters of the description, else "Untitled Post".
func (in CreatePostInput) LinkTitle() string {
	if in.Title != "" {
		return in.Title
	}
	if in.Description != "" {
		return Truncate(in.Description, 50)
	}
	return "Untitled Post"
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
