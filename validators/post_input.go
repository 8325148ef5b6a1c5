package validators

import (
	"html"
	"strings"

	"github.com/paperbird/backend/internal/models"
)

// Validation messages for post input. These are part of the HTTP contract;
// clients match on them verbatim.
const (
	MsgEmptyContent   = "You cannot create an empty post."
	MsgContentTooLong = "Posts cannot be more than 25000 characters long."
	MsgTagTooLong     = "Tags cannot be longer than 32 characters."
	MsgTooManyTags    = "Posts cannot have more than 5 tags. Choose your tags wisely."
)

// MaxRequestContentLength is the request-level content bound. The persisted
// bound (models.MaxContentLength) is tighter and enforced by the store; the
// two layers are intentionally different.
const MaxRequestContentLength = 25000

// MaxTagLength and MaxTagCount bound a post's tag list
const (
	MaxTagLength = 32
	MaxTagCount  = 5
)

// FieldError is one itemized validation failure, serialized into the 422
// response body as {"errors":[{"value","msg","path"},...]}.
type FieldError struct {
	Value string `json:"value"`
	Msg   string `json:"msg"`
	Path  string `json:"path"`
}

// ValidatePostInput runs the post input pipeline: trim, bound checks,
// HTML-escape. On success it returns the sanitized content and the split,
// deduplicated tag list. Checks per field stop at the first failure, so at
// most one error is reported per field.
func ValidatePostInput(in *models.PostInput) (content string, tags []string, errs []FieldError) {
	rawContent := strings.TrimSpace(in.Content)
	switch {
	case len([]rune(rawContent)) == 0:
		errs = append(errs, FieldError{Value: rawContent, Msg: MsgEmptyContent, Path: "content"})
	case len([]rune(rawContent)) > MaxRequestContentLength:
		errs = append(errs, FieldError{Value: rawContent, Msg: MsgContentTooLong, Path: "content"})
	default:
		content = html.EscapeString(rawContent)
	}

	rawTags := strings.TrimSpace(in.Tags)
	switch {
	case anyTagTooLong(rawTags):
		errs = append(errs, FieldError{Value: rawTags, Msg: MsgTagTooLong, Path: "tags"})
	case countUniqueTags(rawTags) > MaxTagCount:
		errs = append(errs, FieldError{Value: rawTags, Msg: MsgTooManyTags, Path: "tags"})
	default:
		tags = splitTags(rawTags)
	}

	if len(errs) > 0 {
		return "", nil, errs
	}
	return content, tags, nil
}

func anyTagTooLong(rawTags string) bool {
	for _, tag := range strings.Split(rawTags, ",") {
		if len([]rune(tag)) > MaxTagLength {
			return true
		}
	}
	return false
}

func countUniqueTags(rawTags string) int {
	seen := make(map[string]struct{})
	for _, tag := range strings.Split(rawTags, ",") {
		seen[tag] = struct{}{}
	}
	return len(seen)
}

// splitTags turns the comma-separated field into the persisted tag list:
// escaped, deduplicated in order, and empty for blank input.
func splitTags(rawTags string) []string {
	if rawTags == "" {
		return []string{}
	}
	seen := make(map[string]struct{})
	tags := []string{}
	for _, tag := range strings.Split(rawTags, ",") {
		escaped := html.EscapeString(tag)
		if _, ok := seen[escaped]; ok {
			continue
		}
		seen[escaped] = struct{}{}
		tags = append(tags, escaped)
	}
	return tags
}
