package like

import (
	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/db"
)

// Context is the closed union identifying what on the recipient's profile
// prompted the like: a specific photo, a specific prompt answer, or nothing
// (nil). At most one variant exists per like.
type Context interface {
	isContext()
}

// PhotoContext points at a photo by gallery position.
type PhotoContext struct {
	Index int `json:"photoIndex"`
}

// PromptContext points at a prompt answer by ID.
type PromptContext struct {
	ID string `json:"promptId"`
}

func (PhotoContext) isContext()  {}
func (PromptContext) isContext() {}

// ContextInput is the wire shape of a like context. Exactly one field may be
// set; ParseContext enforces the exclusivity the open JSON shape cannot.
type ContextInput struct {
	PhotoIndex *int    `json:"photoIndex,omitempty"`
	PromptID   *string `json:"promptId,omitempty"`
}

// ParseContext converts the wire shape into the closed union.
func ParseContext(in *ContextInput) (Context, error) {
	if in == nil {
		return nil, nil
	}
	switch {
	case in.PhotoIndex != nil && in.PromptID != nil:
		return nil, apperr.Validation("context must set exactly one of photoIndex or promptId")
	case in.PhotoIndex != nil:
		return PhotoContext{Index: *in.PhotoIndex}, nil
	case in.PromptID != nil:
		return PromptContext{ID: *in.PromptID}, nil
	default:
		return nil, nil
	}
}

// contextColumns splits a Context into the two nullable like columns.
func contextColumns(c Context) (photoIndex *int, promptID *string) {
	switch v := c.(type) {
	case PhotoContext:
		idx := v.Index
		return &idx, nil
	case PromptContext:
		id := v.ID
		return nil, &id
	default:
		return nil, nil
	}
}

// wireContext renders a stored like row's context back into the wire shape.
// Views carry the wire shape, not the union, so cached payloads survive a
// JSON round-trip.
func wireContext(l *db.Like) *ContextInput {
	switch {
	case l.PhotoIndex != nil:
		idx := *l.PhotoIndex
		return &ContextInput{PhotoIndex: &idx}
	case l.PromptID != nil:
		id := *l.PromptID
		return &ContextInput{PromptID: &id}
	default:
		return nil
	}
}
