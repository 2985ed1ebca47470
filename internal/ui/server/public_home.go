package server

import (
	"net/http"

	"github.com/Its-donkey/coming-soon/internal/ui/model"
	"github.com/Its-donkey/coming-soon/internal/ui/state"
)

func (s *server) homePageTitle() string {
	if tagline := s.cfg.Site.Tagline; tagline != "" {
		return s.cfg.Site.Name + " - " + tagline
	}
	return s.cfg.Site.Name + " - Coming soon"
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	visitor := s.visitorFor(w, r)
	s.renderHome(w, r, visitor)
}

func (s *server) renderHome(w http.ResponseWriter, r *http.Request, visitor *state.Visitor) {
	page := s.buildBasePageData(r, s.homePageTitle(), "/")
	page.StructuredData = s.homeStructuredData(s.absoluteURL(r, "/"))

	data := homePageData{
		basePageData: page,
		Hero:         s.buildHero(),
		Waitlist:     visitor.Waitlist.State(),
		Gift:         visitor.Gift.State(),
		FAQ:          s.faqItems(visitor),
		FAQMode:      visitor.FAQ.Mode().String(),
		FAQCollapse:  visitor.FAQ.Collapsible(),
	}

	tmpl := s.templates["home"]
	if tmpl == nil {
		http.Error(w, "template missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := tmpl.ExecuteTemplate(w, "home", data); err != nil {
		s.logger.Error("http", "render home", err, nil)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (s *server) faqItems(visitor *state.Visitor) []model.FAQItem {
	items := make([]model.FAQItem, 0, len(s.faq))
	for _, entry := range s.faq {
		items = append(items, model.FAQItem{
			Key:      entry.Key,
			Question: entry.Question,
			Answer:   entry.Answer,
			Open:     visitor.FAQ.IsOpen(entry.Key),
		})
	}
	return items
}
