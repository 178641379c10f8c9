package preview

import "strings"

// crawlerPatterns are matched as lower-case substrings of the User-Agent.
// Order only affects which pattern short-circuits first.
var crawlerPatterns = []string{
	"facebookexternalhit",
	"facebot",
	"facebook",
	"twitterbot",
	"twitter",
	"linkedinbot",
	"linkedin",
	"whatsapp",
	"whatsappbot",
	"telegrambot",
	"telegram",
	"slackbot",
	"slack",
	"discordbot",
	"discord",
	"pinterest",
	"pinterestbot",
	"bot",
	"crawler",
	"spider",
}

// IsCrawler reports whether the user agent belongs to a link-unfurling
// crawler. Any UA mentioning "bot" counts as a crawler.
func IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, p := range crawlerPatterns {
		if strings.Contains(ua, p) {
			return true
		}
	}
	return false
}
