// Package publish sends finished posts to their target platforms.
package publish

import (
	"context"
	"fmt"

	"github.com/bryan-buckman/syndicate/internal/model"
)

// Publisher posts text (and optionally an image reference) to one
// platform on behalf of the credential's owner.
type Publisher interface {
	Publish(ctx context.Context, text, imageURL string, cred model.Credential) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, text, imageURL string, cred model.Credential) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, text, imageURL string, cred model.Credential) error {
	return f(ctx, text, imageURL, cred)
}

// Registry maps platforms to their publishers.
type Registry map[model.Platform]Publisher

// Lookup returns the publisher for a platform.
func (r Registry) Lookup(p model.Platform) (Publisher, error) {
	pub, ok := r[p]
	if !ok {
		return nil, fmt.Errorf("no publisher registered for platform %s", p)
	}
	return pub, nil
}
