package views

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/bracket"
	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	"github.com/AdamBeresnev/aux-analytics/internal/middleware"
	users "github.com/AdamBeresnev/aux-analytics/internal/user"
	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006 15:04 MST")
	},
	"embed": func(v any) metadata.EmbedInfo {
		switch s := v.(type) {
		case *bracket.Song:
			return metadata.GetEmbedInfo(s.Source, s.ExternalID)
		case bracket.Song:
			return metadata.GetEmbedInfo(s.Source, s.ExternalID)
		}
		return metadata.EmbedInfo{}
	},
}

var pages = map[string]*template.Template{
	"index":             parsePage("index.html"),
	"login":             parsePage("login.html"),
	"create_tournament": parsePage("create_tournament.html"),
	"tournament":        parsePage("tournament.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// Page is what every template receives. Data holds the page specific view model.
type Page struct {
	Title string
	User  *users.User
	Data  any
}

func page(ctx context.Context, name, title string, data any) templ.Component {
	return templ.FromGoHTML(pages[name], Page{Title: title, User: GetUser(ctx), Data: data})
}

func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

type IndexData struct {
	Open     []bracket.Tournament
	Owned    []bracket.Tournament
	JoinCode string
}

func Index(ctx context.Context, data IndexData) templ.Component {
	return page(ctx, "index", "Tournaments", data)
}

func LoginPage(ctx context.Context, providers []string) templ.Component {
	return page(ctx, "login", "Log in", providers)
}

type CreateTournamentData struct {
	MaxSubmissionsPerUser int
	Error                 string
}

func CreateTournamentPage(ctx context.Context, data CreateTournamentData) templ.Component {
	return page(ctx, "create_tournament", "New tournament", data)
}

func TournamentView(ctx context.Context, data TournamentPage) templ.Component {
	return page(ctx, "tournament", data.Tournament.Name, data)
}
