package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/aux-analytics/internal/config"
	"github.com/AdamBeresnev/aux-analytics/internal/httputil"
	"github.com/AdamBeresnev/aux-analytics/internal/metadata"
	"github.com/AdamBeresnev/aux-analytics/internal/middleware"
	"github.com/AdamBeresnev/aux-analytics/internal/service"
	"github.com/AdamBeresnev/aux-analytics/internal/store"
	"github.com/AdamBeresnev/aux-analytics/views"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

const formTimeLayout = "2006-01-02T15:04"

type app struct {
	cfg            config.Config
	sessionManager *scs.SessionManager
	store          *store.TournamentStore
	userStore      *store.UserStore
	tournaments    *service.TournamentService
	songs          *service.SongService
	brackets       *service.BracketGeneration
	rounds         *service.RoundService
	votes          *service.VoteService
	users          *service.UserService
}

func newApp(cfg config.Config, database *sqlx.DB, sessionManager *scs.SessionManager, resolver service.MetadataResolver) *app {
	tournamentStore := store.NewTournamentStore(database)
	userStore := store.NewUserStore(database)
	return &app{
		cfg:            cfg,
		sessionManager: sessionManager,
		store:          tournamentStore,
		userStore:      userStore,
		tournaments:    service.NewTournamentService(database, tournamentStore),
		songs:          service.NewSongService(database, tournamentStore, resolver),
		brackets:       service.NewBracketService(database, tournamentStore),
		rounds:         service.NewRoundService(database, tournamentStore),
		votes:          service.NewVoteService(database, tournamentStore),
		users:          service.NewUserService(database, userStore, cfg.AdminEmails),
	}
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(a.sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(a.sessionManager, a.userStore))

	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Get("/login", a.handleLogin)
	r.Get("/auth/{provider}", a.handleAuthBegin)
	r.Get("/auth/{provider}/callback", a.handleAuthCallback)
	r.Post("/auth/guest", a.handleGuestLogin)
	r.Post("/logout", a.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", a.handleIndex)
		r.Get("/t", a.handleJoin)
		r.Get("/t/{code}", a.handleJoin)
		r.Get("/tournaments/{id}", a.handleTournament)
		r.Post("/tournaments/{id}/songs", a.handleSubmitSong)
		r.Post("/matchups/{id}/vote", a.handleVote)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/tournaments/create", a.handleCreateTournamentPage)
			r.Post("/tournaments", a.handleCreateTournament)
			r.Post("/tournaments/{id}/bracket", a.handleGenerateBracket)
			r.Post("/rounds/{id}/close", a.handleCloseRound)
		})
	})

	return r
}

func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	var providers []string
	for name := range goth.GetProviders() {
		providers = append(providers, name)
	}
	views.Render(w, r, views.LoginPage(r.Context(), providers))
}

func (a *app) handleAuthBegin(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

	gothic.BeginAuthHandler(w, r)
}

func (a *app) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, "Authentication failure", err)
		return
	}

	user, err := a.users.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		httputil.InternalServerError(w, "Failed to find or create user", err)
		return
	}

	if err := a.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	a.sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *app) handleGuestLogin(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.EnsureGuestUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to login as guest", err)
		return
	}

	if err := a.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return
	}
	a.sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessionManager.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to log out", err)
		return
	}
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (a *app) handleIndex(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	all, err := a.tournaments.ListTournaments(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to get tournaments", err)
		return
	}
	owned, err := a.tournaments.GetTournamentsForUser(r.Context(), userID)
	if err != nil {
		httputil.InternalServerError(w, "Failed to get tournaments", err)
		return
	}
	views.Render(w, r, views.Index(r.Context(), views.IndexData{Open: all, Owned: owned}))
}

func (a *app) handleJoin(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		code = r.URL.Query().Get("code")
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	tournament, err := a.tournaments.JoinTournament(r.Context(), code, userID)
	if err != nil {
		httputil.ServiceError(w, "Tournament", err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/tournaments/%s", tournament.ID), http.StatusFound)
}

func (a *app) handleTournament(w http.ResponseWriter, r *http.Request) {
	a.renderTournament(w, r, chi.URLParam(r, "id"), http.StatusOK, "")
}

// renderTournament writes the tournament page. A non-empty errMsg is shown above the bracket.
func (a *app) renderTournament(w http.ResponseWriter, r *http.Request, id string, status int, errMsg string) {
	data, err := a.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Tournament", err)
		return
	}

	user := middleware.GetAuthenticatedUser(r.Context())
	page := views.NewTournamentPage(data, nil, false, nil)
	if user != nil {
		votes, err := a.store.GetUserVotes(r.Context(), id, user.ID)
		if err != nil {
			httputil.InternalServerError(w, "Failed to get votes", err)
			return
		}
		page = views.NewTournamentPage(data, &user.ID, user.IsAdmin, votes)
	}
	page.Error = errMsg

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	views.TournamentView(r.Context(), page).Render(r.Context(), w)
}

func (a *app) handleSubmitSong(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}

	source, err := metadata.ParseSource(r.Form.Get("source"))
	if err != nil {
		httputil.BadRequest(w, "Invalid source", err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	_, err = a.songs.SubmitSong(r.Context(), tournamentID, userID, service.SongInput{
		Source: source,
		Title:  r.Form.Get("title"),
		Artist: r.Form.Get("artist"),
		Album:  r.Form.Get("album"),
		URL:    r.Form.Get("url"),
	})
	if err != nil {
		if service.IsLookupFailure(err) {
			a.renderTournament(w, r, tournamentID.String(), http.StatusUnprocessableEntity,
				"We couldn't look that link up. Add the title and artist and submit again.")
			return
		}
		httputil.ServiceError(w, "Failed to submit song", err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/tournaments/%s", tournamentID), http.StatusSeeOther)
}

func (a *app) handleVote(w http.ResponseWriter, r *http.Request) {
	matchupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid matchup ID", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	songID, err := uuid.Parse(r.Form.Get("song_id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid song ID", err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if _, err := a.votes.CastVote(r.Context(), userID, matchupID, songID); err != nil {
		httputil.ServiceError(w, "Failed to cast vote", err)
		return
	}

	matchup, err := a.store.GetMatchup(r.Context(), matchupID.String())
	if err != nil {
		httputil.InternalServerError(w, "Failed to get matchup", err)
		return
	}
	a.renderTournament(w, r, matchup.TournamentID.String(), http.StatusOK, "")
}

func (a *app) handleCreateTournamentPage(w http.ResponseWriter, r *http.Request) {
	views.Render(w, r, views.CreateTournamentPage(r.Context(), views.CreateTournamentData{
		MaxSubmissionsPerUser: a.cfg.MaxSubmissionsPerUser,
	}))
}

func (a *app) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}

	input, err := parseTournamentForm(r, a.cfg.MaxSubmissionsPerUser)
	if err != nil {
		httputil.BadRequest(w, err.Error(), err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	tournament, err := a.tournaments.CreateTournament(r.Context(), userID, input)
	if err != nil {
		httputil.ServiceError(w, "Failed to create tournament", err)
		return
	}

	w.Header().Set("HX-Redirect", fmt.Sprintf("/tournaments/%s", tournament.ID))
	w.WriteHeader(http.StatusOK)
}

func parseTournamentForm(r *http.Request, defaultMax int) (service.TournamentInput, error) {
	input := service.TournamentInput{
		Name:                  r.Form.Get("name"),
		Description:           r.Form.Get("description"),
		MaxSubmissionsPerUser: defaultMax,
	}

	fields := []struct {
		key  string
		dest *time.Time
	}{
		{"registration_deadline", &input.RegistrationDeadline},
		{"voting_start", &input.VotingStart},
		{"voting_end", &input.VotingEnd},
	}
	for _, f := range fields {
		t, err := time.ParseInLocation(formTimeLayout, strings.TrimSpace(r.Form.Get(f.key)), time.UTC)
		if err != nil {
			return input, fmt.Errorf("invalid %s", strings.ReplaceAll(f.key, "_", " "))
		}
		*f.dest = t
	}

	if v := strings.TrimSpace(r.Form.Get("max_submissions_per_user")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return input, errors.New("songs per person must be a positive number")
		}
		input.MaxSubmissionsPerUser = n
	}
	return input, nil
}

func (a *app) handleGenerateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}

	order, err := service.ParseSeedOrder(r.Form.Get("order"))
	if err != nil {
		httputil.BadRequest(w, "Invalid seed order", err)
		return
	}
	seed := uint64(time.Now().UnixNano())
	if v := r.Form.Get("seed"); v != "" {
		if seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			httputil.BadRequest(w, "Invalid seed", err)
			return
		}
	}

	if _, err := a.brackets.GenerateFirstRound(r.Context(), tournamentID, order, seed); err != nil {
		httputil.ServiceError(w, "Failed to generate bracket", err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/tournaments/%s", tournamentID), http.StatusSeeOther)
}

func (a *app) handleCloseRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid round ID", err)
		return
	}

	progression, err := a.rounds.CloseRound(r.Context(), roundID)
	if err != nil {
		httputil.ServiceError(w, "Failed to close round", err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/tournaments/%s", progression.Closed.TournamentID), http.StatusSeeOther)
}
