// Package model defines shared data structures.
package model

import "time"

// Platform identifies a social media target.
type Platform string

// Supported platforms.
const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
)

// PostStatus tracks a post through its lifecycle.
type PostStatus string

// Post lifecycle states. A post starts pending and is moved to a
// terminal state by the dispatcher after its job fires.
const (
	StatusPending PostStatus = "pending"
	StatusPosted  PostStatus = "posted"
	StatusFailed  PostStatus = "failed"
)

// SourceItem is a single entry drawn from a syndicated feed.
// Immutable once fetched.
type SourceItem struct {
	Title       string
	Description string
	ImageURL    string // empty if the entry carries no usable image
}

// Credential holds what a platform publisher needs to post on a
// user's behalf. Fields are platform-dependent; unused ones stay empty.
type Credential struct {
	AccessToken string
	MemberID    string // LinkedIn URN only
}

// Post is a transformed, platform-ready piece of content.
// Status is mutated only by the dispatcher.
type Post struct {
	ID          string
	Platform    Platform
	Title       string // empty when merged into Text by truncation
	Text        string
	ImageURL    string
	Credential  Credential
	Status      PostStatus
	StatusError string    // publish error detail, set with StatusFailed
	ScheduledAt time.Time // zero until the post's batch is confirmed
}

// Batch groups posts generated together, awaiting confirmation.
// It exists only between creation and confirm/discard and owns its
// posts exclusively until confirmation hands them to the scheduler.
type Batch struct {
	ID            string
	Posts         map[Platform][]*Post // batch order preserved per platform
	FirstPostTime time.Time
	Interval      time.Duration
	CreatedAt     time.Time
}
