// Package platform holds the per-platform output constraints and their
// enforcement rule.
package platform

import (
	"fmt"
	"strings"

	"github.com/bryan-buckman/syndicate/internal/model"
)

// Ellipsis is appended when content had to be cut to fit a limit.
const Ellipsis = "..."

// Limit is one platform's output constraint. Exactly one of MaxChars
// or MaxWords is non-zero.
type Limit struct {
	MaxChars int
	MaxWords int
}

// limits is the static constraint table. Adding a platform here is the
// only step needed for policy coverage.
var limits = map[model.Platform]Limit{
	model.PlatformTwitter:   {MaxChars: 280},
	model.PlatformInstagram: {MaxWords: 400},
	model.PlatformLinkedIn:  {MaxWords: 600},
	model.PlatformFacebook:  {MaxWords: 1000},
}

// Lookup returns the limit for a platform. An unknown platform is a
// configuration error, caught by Validate at startup, so callers may
// ignore the second return in the steady state.
func Lookup(p model.Platform) (Limit, bool) {
	l, ok := limits[p]
	return l, ok
}

// Validate checks the constraint table is well formed: every supported
// platform present, exactly one limit kind set. Called once at startup;
// a failure there is fatal.
func Validate() error {
	for _, p := range []model.Platform{
		model.PlatformTwitter, model.PlatformInstagram,
		model.PlatformLinkedIn, model.PlatformFacebook,
	} {
		l, ok := limits[p]
		if !ok {
			return fmt.Errorf("platform %s missing from limit table", p)
		}
		if (l.MaxChars == 0) == (l.MaxWords == 0) {
			return fmt.Errorf("platform %s must set exactly one of chars/words", p)
		}
	}
	return nil
}

// Enforce cuts text down to the platform's limit. Character-limited
// platforms get at most limit characters, ellipsis included; word-limited
// platforms keep the first limit words plus a trailing ellipsis token.
// Text already within the limit is returned unchanged.
func Enforce(text string, p model.Platform) string {
	l, ok := limits[p]
	if !ok {
		return text
	}
	if l.MaxChars > 0 {
		if runes := []rune(text); len(runes) > l.MaxChars {
			return string(runes[:l.MaxChars-len(Ellipsis)]) + Ellipsis
		}
	}
	if l.MaxWords > 0 {
		words := strings.Fields(text)
		if len(words) > l.MaxWords {
			return strings.Join(words[:l.MaxWords], " ") + " " + Ellipsis
		}
	}
	return text
}
