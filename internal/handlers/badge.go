package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slackin/internal/badge"
	"slackin/internal/lang"
	"slackin/internal/slack"
)

// RegisterBadgeRoutes serves the embeddable presence badge. Counts come from
// the slack client's cache, so the badge stays cheap to hotlink.
func RegisterBadgeRoutes(router chi.Router, slackClient slack.Client, resolver *lang.Resolver) {
	router.Get("/badge.svg", func(writer http.ResponseWriter, request *http.Request) {
		label := resolver.Get("slackin.badge_label", nil)

		status := "-/-"
		color := badge.ColorGray
		if counts, err := slackClient.UserCounts(request.Context()); err == nil {
			status = fmt.Sprintf("%d/%d", counts.Active, counts.Total)
			color = badge.ColorForCounts(counts.Active, counts.Total)
		}

		writer.Header().Set("Content-Type", "image/svg+xml;charset=utf-8")
		writer.Header().Set("Cache-Control", "max-age=0, no-cache, no-store, must-revalidate")
		_, _ = writer.Write(badge.Render(label, status, color))
	})
}
