package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"slackin/internal/lang"
	"slackin/internal/logger"
	"slackin/internal/validation"
	"slackin/middleware"
)

// i18nResponse is the payload the browser-side UI loads its catalog from.
type i18nResponse struct {
	Locale   string                    `json:"locale"`
	Locales  []string                  `json:"locales"`
	Messages map[string]map[string]any `json:"messages"`
}

// RegisterI18nRoutes exposes the message catalog for client-side rendering.
func RegisterI18nRoutes(router chi.Router, resolver *lang.Resolver) {
	router.Get("/api/i18n", func(writer http.ResponseWriter, request *http.Request) {
		locale := resolveLocale(request, resolver)
		payload := i18nResponse{
			Locale:   locale,
			Locales:  resolver.Locales(),
			Messages: resolver.Messages(locale),
		}
		writer.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(writer).Encode(payload); err != nil {
			logger.HTTPError(request.Method, request.URL.Path, http.StatusInternalServerError, err).
				Str("request_id", middleware.GetRequestID(request.Context())).
				Msg("failed to encode i18n response")
		}
	})
}

// resolveLocale picks the locale for a request: a valid and loaded ?lang=
// query wins, then the first loaded Accept-Language entry, then the
// resolver's own locale.
func resolveLocale(request *http.Request, resolver *lang.Resolver) string {
	loaded := resolver.Locales()

	if query := normalizeLocale(request.URL.Query().Get("lang")); query != "" {
		if matched := matchLocale(query, loaded); matched != "" {
			return matched
		}
	}

	header := request.Header.Get("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := part
		if idx := strings.Index(tag, ";"); idx >= 0 {
			tag = tag[:idx]
		}
		if candidate := normalizeLocale(tag); candidate != "" {
			if matched := matchLocale(candidate, loaded); matched != "" {
				return matched
			}
		}
	}

	return resolver.Locale()
}

// normalizeLocale lowercases a tag and converts underscores ("pt_BR") to
// the hyphenated form used by catalog source keys.
func normalizeLocale(tag string) string {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if validation.ValidateLocale(normalized) != nil {
		return ""
	}
	return normalized
}

// matchLocale finds tag among the loaded locales, falling back to a
// primary-subtag match ("pt" matches "pt-br").
func matchLocale(tag string, loaded []string) string {
	for _, locale := range loaded {
		if locale == tag {
			return locale
		}
	}
	primary := tag
	if idx := strings.Index(primary, "-"); idx > 0 {
		primary = primary[:idx]
	}
	for _, locale := range loaded {
		if locale == primary || strings.HasPrefix(locale, primary+"-") {
			return locale
		}
	}
	return ""
}
