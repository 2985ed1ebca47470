package server

import (
	"fmt"
	"html/template"
	"io/fs"
)

// loadTemplates parses the page templates from fsys.
// It returns a map keyed by logical template name.
func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	homeTmpl, err := template.New("home").ParseFS(fsys, "base.tmpl", "home.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse home templates: %w", err)
	}

	return map[string]*template.Template{
		"home": homeTmpl,
	}, nil
}
