package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/Its-donkey/coming-soon/internal/config"
	"github.com/Its-donkey/coming-soon/internal/storage"
	"github.com/Its-donkey/coming-soon/internal/ui/accordion"
	"github.com/Its-donkey/coming-soon/internal/ui/forms"
	"github.com/Its-donkey/coming-soon/internal/ui/model"
	"github.com/Its-donkey/coming-soon/internal/ui/state"
	"github.com/Its-donkey/coming-soon/internal/ui/web"
	"github.com/Its-donkey/coming-soon/logging"
)

// Options configures the site HTTP server.
type Options struct {
	Config config.Config
	Store  storage.EmailStore
	Logger *logging.Logger

	// Templates and Assets default to the embedded copies.
	Templates map[string]*template.Template
	Assets    fs.FS
}

type server struct {
	cfg       config.Config
	store     storage.EmailStore
	logger    *logging.Logger
	templates map[string]*template.Template
	assets    fs.FS
	sessions  *state.Sessions
	faqMode   accordion.Mode
	faq       []faqEntry
	socials   []model.SocialLink
	now       func() time.Time
}

type basePageData struct {
	PageTitle       string
	StylesheetPath  string
	ScriptPath      string
	CurrentYear     int
	SiteName        string
	MetaDescription string
	CanonicalURL    string
	OGType          string
	Robots          string
	StructuredData  template.JS
	Socials         []model.SocialLink
}

type heroData struct {
	Name       string
	Tagline    string
	LaunchDate string
	LaunchISO  string
}

type homePageData struct {
	basePageData
	Hero        heroData
	Waitlist    model.WaitlistFormState
	Gift        model.GiftModalState
	FAQ         []model.FAQItem
	FAQMode     string
	FAQCollapse bool
}

func newServer(opts Options) (*server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: email store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	mode, err := accordion.ParseMode(opts.Config.FAQ.Mode)
	if err != nil {
		return nil, err
	}

	tmpl := opts.Templates
	if tmpl == nil {
		loaded, err := loadTemplates(web.Templates())
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		tmpl = loaded
	}
	assets := opts.Assets
	if assets == nil {
		assets = web.Static()
	}

	srv := &server{
		cfg:       opts.Config,
		store:     opts.Store,
		logger:    logger,
		templates: tmpl,
		assets:    assets,
		faqMode:   mode,
		faq:       faqEntries(),
		socials:   socialLinks(opts.Config.Social),
		now:       time.Now,
	}
	srv.sessions = state.NewSessions(opts.Config.SessionTTL, opts.Config.SessionMax, srv.newVisitor)
	return srv, nil
}

// newVisitor builds the per-session controllers over the shared store.
func (s *server) newVisitor(id string) *state.Visitor {
	return &state.Visitor{
		ID:       id,
		Waitlist: forms.NewWaitlist(s.store, s.logger),
		Gift:     forms.NewGiftClaim(s.store, s.logger, s.cfg.Site.ConfirmationCode()),
		FAQ:      accordion.New(s.faqMode, s.cfg.FAQ.Collapsible, s.cfg.FAQ.DefaultOpen...),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/waitlist", s.handleWaitlistSubmit)
	mux.HandleFunc("/gift/open", s.handleGiftOpen)
	mux.HandleFunc("/gift/close", s.handleGiftClose)
	mux.HandleFunc("/gift/claim", s.handleGiftClaim)
	mux.HandleFunc("/faq/toggle", s.handleFAQToggle)
	mux.Handle("/api/waitlist", s.withCORS(http.HandlerFunc(s.handleAPIWaitlist)))
	mux.Handle("/api/gift-claims", s.withCORS(http.HandlerFunc(s.handleAPIGiftClaim)))
	mux.Handle("/styles.css", s.assetHandler("styles.css", "text/css; charset=utf-8"))
	mux.Handle("/app.js", s.assetHandler("app.js", "application/javascript; charset=utf-8"))
	mux.HandleFunc("/robots.txt", s.handleRobots)
	mux.HandleFunc("/sitemap.xml", s.handleSitemap)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return logging.NewHTTPLogger(s.logger, 0).Middleware(mux)
}

// NewHandler returns the site handler without starting a listener.
func NewHandler(opts Options) (http.Handler, error) {
	srv, err := newServer(opts)
	if err != nil {
		return nil, err
	}
	return srv.routes(), nil
}

// Run serves the site until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	srv, err := newServer(opts)
	if err != nil {
		return err
	}

	go srv.sessions.Start()
	defer srv.sessions.Stop()

	server := &http.Server{
		Addr:              opts.Config.ListenAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	srv.logger.Info("general", "serving site", map[string]any{
		"addr":  "http://" + opts.Config.ListenAddr,
		"store": srv.store.Name(),
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
