// Package slack wraps the handful of Slack Web API methods the landing
// service needs: presence counts, team info, and legacy invites.
package slack

import "context"

// Counts is a team presence snapshot.
type Counts struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Team describes the workspace shown on the landing page.
type Team struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Client defines the interface for interacting with the Slack Web API.
type Client interface {
	CheckConnection(ctx context.Context) error
	TeamInfo(ctx context.Context) (Team, error)
	UserCounts(ctx context.Context) (Counts, error)
	Invite(ctx context.Context, email string) error
	InvalidateCache()
	Shutdown()
}
