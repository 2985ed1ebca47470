package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/Its-donkey/coming-soon/internal/config"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
)

type faqEntry struct {
	Key      string
	Question string
	Answer   string
}

func faqEntries() []faqEntry {
	return []faqEntry{
		{
			Key:      "launch",
			Question: "When are you launching?",
			Answer:   "We're putting the finishing touches on everything now. Join the waitlist and you'll be the first to hear the date.",
		},
		{
			Key:      "gift",
			Question: "How does the launch gift work?",
			Answer:   "Claim it with your email and we'll hold a discount code for you to use on launch day. One gift per email address.",
		},
		{
			Key:      "shipping",
			Question: "Where will you ship?",
			Answer:   "We'll ship worldwide from day one. Rates and delivery times are shown at checkout.",
		},
	}
}

func (s *server) knownFAQKey(key string) bool {
	for _, entry := range s.faq {
		if entry.Key == key {
			return true
		}
	}
	return false
}

func socialLinks(cfg config.SocialConfig) []model.SocialLink {
	links := []model.SocialLink{
		{Platform: "x", Label: "X", URL: cfg.XURL},
		{Platform: "instagram", Label: "Instagram", URL: cfg.InstagramURL},
		{Platform: "discord", Label: "Discord", URL: cfg.DiscordURL},
	}
	out := links[:0]
	for _, link := range links {
		if strings.TrimSpace(link.URL) != "" {
			out = append(out, link)
		}
	}
	return out
}

// absoluteURL builds an absolute URL for path. SITE_BASE_URL wins over the
// request host when set.
func (s *server) absoluteURL(r *http.Request, path string) string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		clean = "/"
	}
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	if base := s.cfg.Site.BaseURL; base != "" {
		return base + clean
	}

	scheme := "https"
	if r != nil {
		if proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto != "" {
			scheme = proto
		} else if r.TLS == nil {
			scheme = "http"
		}
		if host := strings.TrimSpace(r.Host); host != "" {
			return fmt.Sprintf("%s://%s%s", scheme, host, clean)
		}
	}
	return fmt.Sprintf("%s://localhost%s", scheme, clean)
}

func (s *server) siteDescription() string {
	if tagline := strings.TrimSpace(s.cfg.Site.Tagline); tagline != "" {
		return tagline
	}
	return s.cfg.Site.Name + " is coming soon."
}

func (s *server) homeStructuredData(homeURL string) template.JS {
	if strings.TrimSpace(homeURL) == "" {
		return ""
	}
	org := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Organization",
		"name":        s.cfg.Site.Name,
		"url":         homeURL,
		"description": s.siteDescription(),
	}
	var sameAs []string
	for _, link := range s.socials {
		if u, err := url.Parse(link.URL); err == nil && u.Host != "" {
			sameAs = append(sameAs, link.URL)
		}
	}
	if len(sameAs) > 0 {
		org["sameAs"] = sameAs
	}
	payload, err := json.Marshal(org)
	if err != nil {
		return ""
	}
	return template.JS(payload)
}

func (s *server) buildBasePageData(r *http.Request, title, canonicalPath string) basePageData {
	if strings.TrimSpace(title) == "" {
		title = s.cfg.Site.Name
	}
	return basePageData{
		PageTitle:       title,
		StylesheetPath:  "/styles.css",
		ScriptPath:      "/app.js",
		CurrentYear:     s.now().Year(),
		SiteName:        s.cfg.Site.Name,
		MetaDescription: s.siteDescription(),
		CanonicalURL:    s.absoluteURL(r, canonicalPath),
		OGType:          "website",
		Socials:         s.socials,
	}
}

func (s *server) buildHero() heroData {
	hero := heroData{
		Name:    s.cfg.Site.Name,
		Tagline: s.cfg.Site.Tagline,
	}
	if launch, ok := s.cfg.LaunchDate(); ok {
		hero.LaunchDate = launch.Format("January 2, 2006")
		hero.LaunchISO = launch.Format(config.LaunchDateLayout)
	}
	return hero
}
