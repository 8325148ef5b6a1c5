package validators_test

import (
	"strings"
	"testing"

	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostInputErrors(t *testing.T) {
	tooLongContent := strings.Repeat("A", 25001)
	tooLongTag := strings.Repeat("A", 100)

	tests := []struct {
		name    string
		content string
		tags    string
		want    validators.FieldError
	}{
		{
			name:    "empty content",
			content: "",
			tags:    "hello,test",
			want:    validators.FieldError{Value: "", Msg: "You cannot create an empty post.", Path: "content"},
		},
		{
			name:    "whitespace-only content",
			content: "   \n\t ",
			tags:    "hello,test",
			want:    validators.FieldError{Value: "", Msg: "You cannot create an empty post.", Path: "content"},
		},
		{
			name:    "content over 25000 characters",
			content: tooLongContent,
			tags:    "hello,test",
			want:    validators.FieldError{Value: tooLongContent, Msg: "Posts cannot be more than 25000 characters long.", Path: "content"},
		},
		{
			name:    "tag over 32 characters",
			content: "Hello, this is a short post.",
			tags:    tooLongTag,
			want:    validators.FieldError{Value: tooLongTag, Msg: "Tags cannot be longer than 32 characters.", Path: "tags"},
		},
		{
			name:    "six distinct tags",
			content: "Hello, this is a short post.",
			tags:    "0,1,2,3,4,5",
			want:    validators.FieldError{Value: "0,1,2,3,4,5", Msg: "Posts cannot have more than 5 tags. Choose your tags wisely.", Path: "tags"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, errs := validators.ValidatePostInput(&models.PostInput{Content: tt.content, Tags: tt.tags})
			require.Len(t, errs, 1, "one error per failing field")
			assert.Equal(t, tt.want, errs[0])
		})
	}
}

func TestValidatePostInputReportsBothFields(t *testing.T) {
	_, _, errs := validators.ValidatePostInput(&models.PostInput{Content: "", Tags: "0,1,2,3,4,5"})
	require.Len(t, errs, 2)
	assert.Equal(t, "content", errs[0].Path)
	assert.Equal(t, "tags", errs[1].Path)
}

func TestValidatePostInputSuccess(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		tags        string
		wantContent string
		wantTags    []string
	}{
		{
			name:        "plain input",
			content:     "Hello, this is a short post.",
			tags:        "hello,test",
			wantContent: "Hello, this is a short post.",
			wantTags:    []string{"hello", "test"},
		},
		{
			name:        "no tags",
			content:     "Tagless.",
			tags:        "",
			wantContent: "Tagless.",
			wantTags:    []string{},
		},
		{
			name:        "duplicate tags collapse in order",
			content:     "Deduped.",
			tags:        "tag,other,tag",
			wantContent: "Deduped.",
			wantTags:    []string{"tag", "other"},
		},
		{
			name:        "five duplicated entries pass the unique count",
			content:     "Counting unique tags only.",
			tags:        "a,a,b,c,d,e",
			wantContent: "Counting unique tags only.",
			wantTags:    []string{"a", "b", "c", "d", "e"},
		},
		{
			name:        "markup is escaped",
			content:     "<script>alert('hi')</script>",
			tags:        "<b>",
			wantContent: "&lt;script&gt;alert(&#39;hi&#39;)&lt;/script&gt;",
			wantTags:    []string{"&lt;b&gt;"},
		},
		{
			name:        "surrounding whitespace is trimmed",
			content:     "  padded  ",
			tags:        " hello, test",
			wantContent: "padded",
			wantTags:    []string{"hello", " test"}, // only the whole field is trimmed, matching the original pipeline
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, tags, errs := validators.ValidatePostInput(&models.PostInput{Content: tt.content, Tags: tt.tags})
			require.Empty(t, errs)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}
