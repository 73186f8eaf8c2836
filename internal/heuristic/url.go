package heuristic

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kailas-cloud/mindvault/internal/domain/item"
)

var (
	gifExtRe   = regexp.MustCompile(`(?i)\.gif(?:[?#].*)?$`)
	imageExtRe = regexp.MustCompile(`(?i)\.(?:jpe?g|png|webp)(?:[?#].*)?$`)
)

var platformRules = []struct {
	platform string
	needles  []string
}{
	{item.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{item.PlatformAmazon, []string{"amazon."}},
	{item.PlatformFlipkart, []string{"flipkart"}},
	{item.PlatformInstagram, []string{"instagram.com"}},
	{item.PlatformChatGPT, []string{"chat.openai.com", "chatgpt"}},
	{item.PlatformGitHub, []string{"github.com"}},
	{item.PlatformMedium, []string{"medium.com"}},
	{item.PlatformTwitter, []string{"twitter.com"}},
}

// DetectPlatform maps a URL to its source platform by domain substring.
func DetectPlatform(rawURL string) string {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	if u == "" {
		return item.PlatformGeneric
	}
	for _, r := range platformRules {
		for _, n := range r.needles {
			if strings.Contains(u, n) {
				return r.platform
			}
		}
	}
	if h := host(u); h == "x.com" || strings.HasSuffix(h, ".x.com") {
		return item.PlatformTwitter
	}
	return item.PlatformGeneric
}

// TypeFromURL infers an item type from a URL alone.
// Video hosts are videos, image extensions are images, anything else is a link.
func TypeFromURL(rawURL string) (item.Type, bool) {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	switch {
	case u == "":
		return "", false
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"), strings.Contains(u, "vimeo.com"):
		return item.TypeVideo, true
	case gifExtRe.MatchString(u):
		return item.TypeGIF, true
	case imageExtRe.MatchString(u):
		return item.TypeImage, true
	}
	return item.TypeLink, true
}

// ClassifyURL is the URL-pattern classifier used without the language model.
// It never fails: an empty URL yields the default classification.
func ClassifyURL(rawURL string) item.Classification {
	c := item.DefaultClassification()
	platform := DetectPlatform(rawURL)
	c.Platform = platform

	switch platform {
	case item.PlatformYouTube:
		c.Type, c.Reason = item.TypeVideo, item.ReasonWatchLater
	case item.PlatformAmazon, item.PlatformFlipkart:
		c.Type, c.Reason = item.TypeProduct, item.ReasonBuyLater
	default:
		if t, ok := TypeFromURL(rawURL); ok {
			c.Type = t
		}
	}
	return c
}

// IsShopURL reports whether a URL belongs to a marketplace whose pages carry prices.
func IsShopURL(rawURL string) bool {
	u := strings.ToLower(rawURL)
	return strings.Contains(u, "amazon") || strings.Contains(u, "flipkart")
}

func host(u string) string {
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
