package transform

import (
	"fmt"
	"strings"

	"github.com/bryan-buckman/syndicate/internal/model"
	"github.com/bryan-buckman/syndicate/internal/platform"
)

// promptStyle captures the per-platform tone and hashtag guidance fed
// to the generator. The length ceiling is appended from the policy
// table so prompt and enforcement can never drift apart.
var promptStyles = map[model.Platform][]string{
	model.PlatformTwitter: {
		"Attention-grabbing message",
		"1-2 relevant hashtags",
		"Essential information only",
	},
	model.PlatformInstagram: {
		"Catchy title with relevant emojis",
		"Engaging description",
		"3-5 relevant hashtags",
	},
	model.PlatformLinkedIn: {
		"Professional title",
		"Detailed description with business insights",
		"2-3 relevant hashtags",
		"Professional tone",
	},
	model.PlatformFacebook: {
		"Engaging title",
		"Conversational description",
		"Call to action for engagement",
		"1-2 relevant hashtags",
	},
}

// buildPrompt renders the instruction for one (platform, item) pair.
// The source text is embedded verbatim except that the delimiter token
// is neutralised, so feed content cannot break the reply structure.
func buildPrompt(p model.Platform, title, description string) string {
	var ceiling string
	if limit, ok := platform.Lookup(p); ok {
		if limit.MaxChars > 0 {
			ceiling = fmt.Sprintf("%d characters max", limit.MaxChars)
		} else {
			ceiling = fmt.Sprintf("%d words max", limit.MaxWords)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transform this into a %s post (%s):\n", displayName(p), ceiling)
	for _, line := range promptStyles[p] {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\nFormat output EXACTLY like this:\n")
	fmt.Fprintf(&b, "%s [transformed title]\n", titleLabel)
	fmt.Fprintf(&b, "%s\n", Delimiter)
	fmt.Fprintf(&b, "%s [transformed description]\n", descriptionLabel)
	b.WriteString("\nOriginal Content:\n")
	fmt.Fprintf(&b, "Title: %s\n", stripDelimiter(title))
	fmt.Fprintf(&b, "Description: %s", stripDelimiter(description))
	return b.String()
}

// stripDelimiter removes the reply delimiter from source text before it
// is embedded in a prompt.
func stripDelimiter(s string) string {
	return strings.ReplaceAll(s, Delimiter, " ")
}

func displayName(p model.Platform) string {
	switch p {
	case model.PlatformLinkedIn:
		return "LinkedIn"
	case model.PlatformTwitter:
		return "Twitter"
	case model.PlatformInstagram:
		return "Instagram"
	case model.PlatformFacebook:
		return "Facebook"
	}
	return string(p)
}
