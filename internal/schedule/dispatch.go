package schedule

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/bryan-buckman/syndicate/internal/model"
	"github.com/bryan-buckman/syndicate/internal/publish"
)

// Dispatcher executes one armed job: it publishes the post and records
// the terminal outcome. It is invoked only by the scheduler.
type Dispatcher struct {
	publishers publish.Registry
	registry   *Registry
	logger     *logrus.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(publishers publish.Registry, registry *Registry, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		publishers: publishers,
		registry:   registry,
		logger:     logger,
	}
}

// Dispatch publishes a post and moves it to a terminal state. Failures
// are recorded on the post, not retried; the job is never re-armed.
func (d *Dispatcher) Dispatch(ctx context.Context, post *model.Post) {
	log := d.logger.WithFields(logrus.Fields{
		"post":     post.ID,
		"platform": post.Platform,
	})

	pub, err := d.publishers.Lookup(post.Platform)
	if err != nil {
		d.registry.UpdateStatus(post, model.StatusFailed, err.Error())
		log.WithError(err).Error("Dispatch failed: no publisher")
		return
	}

	if err := pub.Publish(ctx, CombinedText(post), post.ImageURL, post.Credential); err != nil {
		d.registry.UpdateStatus(post, model.StatusFailed, err.Error())
		log.WithError(err).Error("Publish failed")
		return
	}

	d.registry.UpdateStatus(post, model.StatusPosted, "")
	log.Info("Post published")
}

// CombinedText renders the text sent to the platform. A title emptied
// by truncation leaves just the body.
func CombinedText(post *model.Post) string {
	if post.Title == "" {
		return post.Text
	}
	return post.Title + " " + post.Text
}
