package item

import "strings"

// Type is the item kind; it drives rendering and search heuristics.
type Type string

// Known item types.
const (
	TypeText    Type = "text"
	TypeLink    Type = "link"
	TypeImage   Type = "image"
	TypeGIF     Type = "gif"
	TypeVoice   Type = "voice"
	TypeVideo   Type = "video"
	TypeProduct Type = "product"
	TypeNote    Type = "note"
	TypeSocial  Type = "social"
	TypePDF     Type = "pdf"
	TypeDoc     Type = "doc"
)

var allTypes = []Type{
	TypeText, TypeLink, TypeImage, TypeGIF, TypeVoice, TypeVideo,
	TypeProduct, TypeNote, TypeSocial, TypePDF, TypeDoc,
}

// Types returns every known type in declaration order.
func Types() []Type { return append([]Type(nil), allTypes...) }

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	for _, k := range allTypes {
		if t == k {
			return true
		}
	}
	return false
}

// IsVisual reports whether the oracle should be shown the image itself.
func (t Type) IsVisual() bool { return t == TypeImage || t == TypeGIF }

// ParseType normalizes s and reports whether it names a known type.
// "null", "none" and empty strings are not types.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", false
	}
	return t, true
}

// Intent labels.
const (
	ReasonViewLater     = "to view later"
	ReasonReadLater     = "to read later"
	ReasonBuyLater      = "to buy later"
	ReasonWatchLater    = "to watch later"
	ReasonResearchLater = "to research later"
	ReasonReference     = "important reference"
	ReasonPersonalNote  = "personal note"
)

// DefaultReason is assigned when nothing better is known.
const DefaultReason = ReasonViewLater

var reasons = []string{
	ReasonViewLater, ReasonReadLater, ReasonBuyLater, ReasonWatchLater,
	ReasonResearchLater, ReasonReference, ReasonPersonalNote,
}

// Reasons returns the known intent labels.
func Reasons() []string { return append([]string(nil), reasons...) }

// IsKnownReason reports whether s is one of the intent labels (case-insensitive).
func IsKnownReason(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range reasons {
		if r == s {
			return true
		}
	}
	return false
}

// Source platforms.
const (
	PlatformYouTube   = "youtube"
	PlatformAmazon    = "amazon"
	PlatformFlipkart  = "flipkart"
	PlatformInstagram = "instagram"
	PlatformChatGPT   = "chatgpt"
	PlatformGitHub    = "github"
	PlatformMedium    = "medium"
	PlatformTwitter   = "twitter"
	PlatformGeneric   = "generic"
)
