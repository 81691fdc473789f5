package render

import (
	"io"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeffrom/chlog/commit"
)

const defaultTemplate = `{{- range $i, $g := .Groups }}{{ if $i }}
{{ end }}{{ or $.Project "release" }}: {{ $g.Label }}{{ if not $g.IsUnreleased }} ({{ date $g }}){{ end }}

This release contains the following changes:
{{ range $cat := $g.ByCategory }}
{{ $cat.Category }}:
{{ range $c := $cat.Commits }}* {{ if $c.Breaking }}[BREAKING] {{ end }}{{ message $c }} ({{ $c.ShortID }})
{{ end }}{{ end }}{{ end -}}
`

// Template renders groups with a text/template. The template is executed
// with the project name as .Project and the groups as .Groups.
type Template struct {
	opts Options
	tmpl *template.Template
}

type templateData struct {
	Project string
	Groups  []*commit.ReleaseGroup
}

func NewTemplate(opts Options) (*Template, error) {
	src := opts.Template
	if src == "" {
		src = defaultTemplate
	}
	t := &Template{opts: opts}
	tmpl, err := template.New("changelog").Funcs(t.funcs()).Parse(src)
	if err != nil {
		return nil, err
	}
	t.tmpl = tmpl
	return t, nil
}

func (t *Template) funcs() template.FuncMap {
	title := cases.Title(language.Und)
	return template.FuncMap{
		"message": Message,
		"date": func(g *commit.ReleaseGroup) string {
			return groupDate(g, t.opts.dateFormat())
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": title.String,
	}
}

func (t *Template) Render(w io.Writer, groups []*commit.ReleaseGroup) error {
	return t.tmpl.Execute(w, templateData{Project: t.opts.Project, Groups: groups})
}
