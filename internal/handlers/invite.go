package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	slackinerrors "slackin/internal/errors"
	"slackin/internal/lang"
	"slackin/internal/logger"
	"slackin/internal/slack"
	"slackin/internal/validation"
	"slackin/middleware"
)

// InviteOptions configures the invite endpoint.
type InviteOptions struct {
	Slack      slack.Client
	Resolver   *lang.Resolver
	Invites    *prometheus.CounterVec
	RequireCoC bool
}

type inviteRequest struct {
	Email string `json:"email"`
	CoC   bool   `json:"coc"`
}

type inviteResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RegisterInviteRoutes wires the invite submission endpoint. Accepts JSON
// ({"email": ..., "coc": true}) and classic form posts.
func RegisterInviteRoutes(router chi.Router, opts InviteOptions) {
	router.Post("/invite", func(writer http.ResponseWriter, request *http.Request) {
		submission, err := decodeInvite(request)
		if err != nil {
			writeInvite(writer, request, opts, submission.Email, http.StatusBadRequest, "invalid", localizedInviteError(request, opts.Resolver, slackinerrors.ErrInvalidEmail, ""))
			return
		}

		if err := validation.ValidateEmail(submission.Email); err != nil {
			writeInvite(writer, request, opts, submission.Email, http.StatusBadRequest, "invalid", localizedInviteError(request, opts.Resolver, err, submission.Email))
			return
		}
		if opts.RequireCoC && !submission.CoC {
			writeInvite(writer, request, opts, submission.Email, http.StatusBadRequest, "coc_not_accepted", localizedInviteError(request, opts.Resolver, slackinerrors.ErrCoCNotAccepted, submission.Email))
			return
		}

		email := strings.TrimSpace(submission.Email)
		if err := opts.Slack.Invite(request.Context(), email); err != nil {
			status, outcome := classifyInviteError(err)
			writeInvite(writer, request, opts, email, status, outcome, localizedInviteError(request, opts.Resolver, err, email))
			return
		}

		loc := opts.Resolver.WithLocale(resolveLocale(request, opts.Resolver))
		message := loc.Get("slackin.invite.sent", lang.Replacements{"email": email})
		writeInvite(writer, request, opts, email, http.StatusOK, "sent", message)
	})
}

// decodeInvite reads an invite submission from a JSON body or form fields.
func decodeInvite(request *http.Request) (inviteRequest, error) {
	contentType := request.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var submission inviteRequest
		if err := json.NewDecoder(request.Body).Decode(&submission); err != nil {
			return inviteRequest{}, err
		}
		return submission, nil
	}
	if err := request.ParseForm(); err != nil {
		return inviteRequest{}, err
	}
	coc := request.PostFormValue("coc")
	return inviteRequest{
		Email: request.PostFormValue("email"),
		CoC:   coc == "on" || coc == "true" || coc == "1",
	}, nil
}

// classifyInviteError maps invite failures to an HTTP status and the outcome
// label recorded on the invites counter.
func classifyInviteError(err error) (int, string) {
	switch {
	case errors.Is(err, slackinerrors.ErrAlreadyInvited):
		return http.StatusConflict, "already_invited"
	case errors.Is(err, slackinerrors.ErrAlreadyInTeam):
		return http.StatusConflict, "already_in_team"
	case errors.Is(err, slackinerrors.ErrInvalidEmail), errors.Is(err, slackinerrors.ErrMissingEmail):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, slackinerrors.ErrInviteDisabled):
		return http.StatusForbidden, "disabled"
	case errors.Is(err, slackinerrors.ErrSlackUnavailable):
		return http.StatusBadGateway, "unavailable"
	default:
		return http.StatusBadGateway, "failed"
	}
}

// localizedInviteError turns a sentinel into the user-facing message for the
// request's locale. Unknown errors share the generic unavailable message so
// API internals never leak to the page.
func localizedInviteError(request *http.Request, resolver *lang.Resolver, err error, email string) string {
	loc := resolver.WithLocale(resolveLocale(request, resolver))
	switch {
	case errors.Is(err, slackinerrors.ErrMissingEmail):
		return loc.Get("validation.required", lang.Replacements{"attribute": "email"})
	case errors.Is(err, slackinerrors.ErrInvalidEmail):
		return loc.Get("validation.email", lang.Replacements{"attribute": "email"})
	case errors.Is(err, slackinerrors.ErrCoCNotAccepted):
		return loc.Get("validation.accepted", lang.Replacements{"attribute": "coc"})
	case errors.Is(err, slackinerrors.ErrAlreadyInvited):
		return loc.Get("slackin.error.already_invited", lang.Replacements{"email": email})
	case errors.Is(err, slackinerrors.ErrAlreadyInTeam):
		return loc.Get("slackin.error.already_in_team", nil)
	case errors.Is(err, slackinerrors.ErrInviteDisabled):
		return loc.Get("slackin.error.invite_disabled", nil)
	default:
		return loc.Get("slackin.error.unavailable", nil)
	}
}

func writeInvite(writer http.ResponseWriter, request *http.Request, opts InviteOptions, email string, status int, outcome, message string) {
	if opts.Invites != nil {
		opts.Invites.WithLabelValues(outcome).Inc()
	}
	logger.InviteEvent(email, outcome).
		Str("request_id", middleware.GetRequestID(request.Context())).
		Msg("invite submission")

	payload := inviteResponse{OK: status == http.StatusOK}
	if payload.OK {
		payload.Message = message
	} else {
		payload.Error = message
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		logger.HTTPError(request.Method, request.URL.Path, status, err).Msg("failed to encode invite response")
	}
}
