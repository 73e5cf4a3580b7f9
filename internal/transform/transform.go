// Package transform rewrites source items into platform-ready posts.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bryan-buckman/syndicate/internal/llm"
	"github.com/bryan-buckman/syndicate/internal/model"
	"github.com/bryan-buckman/syndicate/internal/platform"
)

// Delimiter separates the title and description segments in a
// generation reply.
const Delimiter = "---"

// Segment labels the generator is instructed to emit.
const (
	titleLabel       = "New Title:"
	descriptionLabel = "New Description:"
)

// Failure taxonomy. Both abort the whole batch creation; callers
// classify with errors.Is.
var (
	// ErrGeneration wraps a text-generation capability failure.
	ErrGeneration = errors.New("text generation failed")
	// ErrMalformedOutput means the reply did not match the expected
	// two-segment structure. No heuristic re-parse is attempted.
	ErrMalformedOutput = errors.New("malformed generation output")
)

// Transformer turns one source item into one post per target platform.
type Transformer struct {
	gen llm.Generator
}

// New creates a transformer backed by the given generator.
func New(gen llm.Generator) *Transformer {
	return &Transformer{gen: gen}
}

// Transform produces a pending post for one (item, platform) pair.
// The returned post always satisfies the platform's length limit, even
// when the generator ignored the ceiling in its instructions.
func (t *Transformer) Transform(ctx context.Context, item model.SourceItem, p model.Platform, cred model.Credential) (*model.Post, error) {
	prompt := buildPrompt(p, item.Title, item.Description)

	reply, err := t.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	title, description, err := parseReply(reply)
	if err != nil {
		return nil, err
	}

	limit, ok := platform.Lookup(p)
	if !ok {
		return nil, fmt.Errorf("no limit configured for platform %s", p)
	}

	if limit.MaxChars > 0 {
		// Hard character ceiling applies to the whole post. If the
		// combination had to be cut, the title merges into the text so
		// the ceiling survives.
		combined := title + " " + description
		if enforced := platform.Enforce(combined, p); enforced != combined {
			title = ""
			description = enforced
		}
	} else {
		// Word-limited platforms constrain the description only;
		// titles are short by construction.
		description = platform.Enforce(description, p)
	}

	return &model.Post{
		ID:         uuid.New().String(),
		Platform:   p,
		Title:      title,
		Text:       description,
		ImageURL:   item.ImageURL,
		Credential: cred,
		Status:     model.StatusPending,
	}, nil
}

// parseReply splits a generation reply into its title and description
// segments. The reply must contain the delimiter and both labels.
func parseReply(reply string) (title, description string, err error) {
	parts := strings.SplitN(reply, Delimiter, 2)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: missing %q delimiter", ErrMalformedOutput, Delimiter)
	}

	title = strings.TrimSpace(parts[0])
	if !strings.HasPrefix(title, titleLabel) {
		return "", "", fmt.Errorf("%w: first segment missing %q label", ErrMalformedOutput, titleLabel)
	}
	title = strings.TrimSpace(strings.TrimPrefix(title, titleLabel))

	description = strings.TrimSpace(parts[1])
	if !strings.HasPrefix(description, descriptionLabel) {
		return "", "", fmt.Errorf("%w: second segment missing %q label", ErrMalformedOutput, descriptionLabel)
	}
	description = strings.TrimSpace(strings.TrimPrefix(description, descriptionLabel))

	return title, description, nil
}
