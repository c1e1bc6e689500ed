package slack

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("slack is not configured")

// NewDisabledClient returns a client for running without a Slack token:
// the landing page still renders, counts are unknown, invites fail.
func NewDisabledClient() Client {
	return &disabledClient{}
}

type disabledClient struct{}

func (c *disabledClient) CheckConnection(_ context.Context) error {
	return ErrNotConfigured
}

func (c *disabledClient) TeamInfo(_ context.Context) (Team, error) {
	return Team{}, ErrNotConfigured
}

func (c *disabledClient) UserCounts(_ context.Context) (Counts, error) {
	return Counts{}, ErrNotConfigured
}

func (c *disabledClient) Invite(_ context.Context, _ string) error {
	return ErrNotConfigured
}

func (c *disabledClient) InvalidateCache() {
}

func (c *disabledClient) Shutdown() {
}
