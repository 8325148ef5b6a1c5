package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/paperbird/backend/internal/repositories"
	"github.com/rs/zerolog/log"
)

// LedgerError reports a tag counter update that failed after the owning post
// mutation. It must never be swallowed: a silently skipped counter adjustment
// corrupts the total_posts invariant permanently.
type LedgerError struct {
	Tag string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("tag ledger update failed for %q: %v", e.Tag, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// TagLedger keeps tag usage counters in step with the live post→tag
// associations. It is the sole writer of tag records; callers hand it whole
// tag lists and it works out the counter deltas.
type TagLedger struct {
	tags repositories.TagRepository
}

// NewTagLedger creates a new TagLedger over the given tag repository
func NewTagLedger(tags repositories.TagRepository) *TagLedger {
	return &TagLedger{tags: tags}
}

// RegisterUsage records one more live post using the tag, creating the tag
// record at 1 on first use. Callers must call once per post-tag association.
func (l *TagLedger) RegisterUsage(ctx context.Context, name string) error {
	return l.tags.IncrementTotal(ctx, name)
}

// ReleaseUsage records one less live post using the tag and deletes the
// record when the counter reaches zero. Releasing a tag that does not exist
// is a no-op; correct callers never hit that path.
func (l *TagLedger) ReleaseUsage(ctx context.Context, name string) error {
	total, err := l.tags.DecrementTotal(ctx, name)
	if errors.Is(err, repositories.ErrTagNotFound) {
		log.Warn().Str("tag", name).Msg("released a tag with no ledger record")
		return nil
	}
	if err != nil {
		return err
	}
	if total <= 0 {
		return l.tags.DeleteIfZero(ctx, name)
	}
	return nil
}

// SyncNewPost registers every tag of a freshly created post
func (l *TagLedger) SyncNewPost(ctx context.Context, tags []string) error {
	for _, name := range tags {
		if err := l.RegisterUsage(ctx, name); err != nil {
			return &LedgerError{Tag: name, Err: err}
		}
	}
	return nil
}

// SyncEditedPost applies the set difference between a post's old and new tag
// lists: additions are registered, removals released, and tags present in
// both are left untouched. Tag lists arrive deduplicated, so no name appears
// twice within either list.
func (l *TagLedger) SyncEditedPost(ctx context.Context, oldTags, newTags []string) error {
	for _, name := range subtract(newTags, oldTags) {
		if err := l.RegisterUsage(ctx, name); err != nil {
			return &LedgerError{Tag: name, Err: err}
		}
	}
	for _, name := range subtract(oldTags, newTags) {
		if err := l.ReleaseUsage(ctx, name); err != nil {
			return &LedgerError{Tag: name, Err: err}
		}
	}
	return nil
}

// SyncDeletedPost releases every tag a deleted post held. Skipping this on
// post deletion is a ledger-corruption bug.
func (l *TagLedger) SyncDeletedPost(ctx context.Context, tags []string) error {
	for _, name := range tags {
		if err := l.ReleaseUsage(ctx, name); err != nil {
			return &LedgerError{Tag: name, Err: err}
		}
	}
	return nil
}

// subtract returns the entries of a that are absent from b, in order
func subtract(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, name := range b {
		in[name] = struct{}{}
	}
	var out []string
	for _, name := range a {
		if _, ok := in[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
