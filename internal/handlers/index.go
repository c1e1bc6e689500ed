package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slackin/internal/lang"
	"slackin/internal/logger"
	"slackin/internal/slack"
	"slackin/middleware"
)

// IndexOptions configures the landing page.
type IndexOptions struct {
	WebFS    fs.FS
	Slack    slack.Client
	Resolver *lang.Resolver
	TeamName string
	HasCoC   bool
}

type indexPageData struct {
	Locale           string
	TeamName         string
	Headline         string
	JoinText         string
	UsersOnline      string
	UsersTotal       string
	EmailPlaceholder string
	ButtonText       string
	SendingText      string
	CoCAgreeText     string
	CoCLinkText      string
	HasCoC           bool
}

// RegisterIndexRoutes renders the invite landing page from the embedded
// template plus live presence counts. Static assets under the web FS are
// served alongside it.
func RegisterIndexRoutes(router chi.Router, opts IndexOptions) error {
	page, err := template.ParseFS(opts.WebFS, "web/index.html")
	if err != nil {
		return fmt.Errorf("parse index template: %w", err)
	}

	staticFS, err := fs.Sub(opts.WebFS, "web")
	if err != nil {
		return fmt.Errorf("static file system: %w", err)
	}
	fileServer := http.StripPrefix("/assets/", http.FileServer(http.FS(staticFS)))
	router.Get("/assets/*", fileServer.ServeHTTP)

	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		locale := resolveLocale(request, opts.Resolver)
		loc := opts.Resolver.WithLocale(locale)

		teamName := opts.TeamName
		if team, err := opts.Slack.TeamInfo(request.Context()); err == nil && team.Name != "" {
			teamName = team.Name
		}

		data := indexPageData{
			Locale:           locale,
			TeamName:         teamName,
			Headline:         loc.Get("slackin.headline", nil),
			JoinText:         loc.Get("slackin.join", lang.Replacements{"team": teamName}),
			EmailPlaceholder: loc.Get("slackin.form.email_placeholder", nil),
			ButtonText:       loc.Get("slackin.form.button", nil),
			SendingText:      loc.Get("slackin.invite.sending", nil),
			CoCAgreeText:     loc.Get("slackin.form.coc_agree", nil),
			CoCLinkText:      loc.Get("slackin.coc", nil),
			HasCoC:           opts.HasCoC,
		}
		if counts, err := opts.Slack.UserCounts(request.Context()); err == nil {
			data.UsersOnline = loc.Choice("slackin.users_online", counts.Active, nil)
			data.UsersTotal = loc.Choice("slackin.users_total", counts.Total, nil)
		}

		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(writer, data); err != nil {
			logger.HTTPError(request.Method, request.URL.Path, http.StatusInternalServerError, err).
				Str("request_id", middleware.GetRequestID(request.Context())).
				Msg("failed to render landing page")
		}
	})

	return nil
}
