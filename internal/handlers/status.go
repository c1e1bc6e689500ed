package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slackin/internal/slack"
	"slackin/internal/version"
)

type statusResponse struct {
	Status string        `json:"status"`
	Slack  slackStatus   `json:"slack"`
	Counts *slack.Counts `json:"counts,omitempty"`
}

type slackStatus struct {
	Connected bool   `json:"connected"`
	Team      string `json:"team,omitempty"`
}

// RegisterStatusRoutes wires the operational endpoints: liveness, readiness,
// a human-oriented status summary, and build version info.
func RegisterStatusRoutes(router chi.Router, slackClient slack.Client) {
	router.Get("/api/health", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Readiness requires the Slack API to answer, so a revoked token or an
	// outage takes the instance out of rotation.
	router.Get("/api/ready", func(writer http.ResponseWriter, request *http.Request) {
		if err := slackClient.CheckConnection(request.Context()); err != nil {
			writeJSON(writer, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "reason": "slack"})
			return
		}
		writeJSON(writer, http.StatusOK, map[string]string{"status": "ready"})
	})

	router.Get("/api/status", func(writer http.ResponseWriter, request *http.Request) {
		payload := statusResponse{Status: "degraded"}
		if err := slackClient.CheckConnection(request.Context()); err == nil {
			payload.Slack.Connected = true
			payload.Status = "ok"
			if team, err := slackClient.TeamInfo(request.Context()); err == nil {
				payload.Slack.Team = team.Name
			}
			if counts, err := slackClient.UserCounts(request.Context()); err == nil {
				payload.Counts = &counts
			}
		}
		writeJSON(writer, http.StatusOK, payload)
	})

	router.Get("/api/version", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, version.Info())
	})
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
