package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"slackin/config"
	"slackin/internal/cache"
	slackinerrors "slackin/internal/errors"
	"slackin/internal/logger"
	"slackin/internal/validation"
)

const (
	countsCacheKey   = "counts"
	teamCacheKey     = "team"
	teamInfoCacheTTL = 10 * time.Minute
)

type realClient struct {
	http     *retryablehttp.Client
	apiURL   string
	token    string
	channels []string

	countsCache *cache.Cache
	teamCache   *cache.Cache
	stopChan    chan struct{}
}

// NewClientFromConfig builds a Slack Web API client. The token and channel
// names are validated up front; everything else fails lazily per call.
func NewClientFromConfig(cfg config.SlackConfig) (Client, error) {
	if err := validation.ValidateSlackToken(cfg.Token); err != nil {
		return nil, err
	}
	if err := validation.ValidateChannels(cfg.Channels); err != nil {
		return nil, err
	}

	apiURL := strings.TrimSpace(cfg.APIURL)
	if apiURL == "" {
		return nil, fmt.Errorf("slack api url is empty")
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.RetryWaitMin = 200 * time.Millisecond
	httpClient.RetryWaitMax = 2 * time.Second
	httpClient.HTTPClient.Timeout = 15 * time.Second
	httpClient.Logger = nil

	countsTTL := time.Duration(cfg.CountsTTLSeconds) * time.Second
	if countsTTL <= 0 {
		countsTTL = 10 * time.Second
	}

	c := &realClient{
		http:        httpClient,
		apiURL:      apiURL,
		token:       strings.TrimSpace(cfg.Token),
		channels:    cfg.Channels,
		countsCache: cache.New(countsTTL),
		teamCache:   cache.New(teamInfoCacheTTL),
		stopChan:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.countsCache.Cleanup()
				c.teamCache.Cleanup()
			case <-c.stopChan:
				return
			}
		}
	}()

	return c, nil
}

// apiResponse is the envelope every Slack Web API method returns.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (r apiResponse) ok() bool     { return r.OK }
func (r apiResponse) code() string { return r.Error }

type envelope interface {
	ok() bool
	code() string
}

type usersListResponse struct {
	apiResponse
	Members []struct {
		ID       string `json:"id"`
		Deleted  bool   `json:"deleted"`
		IsBot    bool   `json:"is_bot"`
		Presence string `json:"presence"`
	} `json:"members"`
}

type teamInfoResponse struct {
	apiResponse
	Team struct {
		Name string `json:"name"`
		Icon struct {
			Image132 string `json:"image_132"`
		} `json:"icon"`
	} `json:"team"`
}

// CheckConnection verifies the token against auth.test.
func (c *realClient) CheckConnection(ctx context.Context) error {
	var resp apiResponse
	if err := c.callAPI(ctx, "auth.test", nil, &resp); err != nil {
		return err
	}
	return nil
}

// TeamInfo returns workspace name and icon, cached for ten minutes.
func (c *realClient) TeamInfo(ctx context.Context) (Team, error) {
	if cached, found := c.teamCache.Get(teamCacheKey); found {
		if team, ok := cached.(Team); ok {
			return team, nil
		}
	}

	var resp teamInfoResponse
	if err := c.callAPI(ctx, "team.info", nil, &resp); err != nil {
		return Team{}, err
	}

	team := Team{Name: resp.Team.Name, Icon: resp.Team.Icon.Image132}
	c.teamCache.Set(teamCacheKey, team)
	return team, nil
}

// UserCounts returns total and active member counts. Deleted users, bots,
// and slackbot are excluded. Results are cached briefly since the badge
// endpoint can be hit at page-view rates.
func (c *realClient) UserCounts(ctx context.Context) (Counts, error) {
	if cached, found := c.countsCache.Get(countsCacheKey); found {
		if counts, ok := cached.(Counts); ok {
			return counts, nil
		}
	}

	params := url.Values{}
	params.Set("presence", "1")

	var resp usersListResponse
	if err := c.callAPI(ctx, "users.list", params, &resp); err != nil {
		return Counts{}, err
	}

	var counts Counts
	for _, member := range resp.Members {
		if member.Deleted || member.IsBot || member.ID == "USLACKBOT" {
			continue
		}
		counts.Total++
		if member.Presence == "active" {
			counts.Active++
		}
	}

	c.countsCache.Set(countsCacheKey, counts)
	return counts, nil
}

// Invite asks Slack to send an invitation email via the legacy
// users.admin.invite method.
func (c *realClient) Invite(ctx context.Context, email string) error {
	params := url.Values{}
	params.Set("email", email)
	if len(c.channels) > 0 {
		params.Set("channels", strings.Join(c.channels, ","))
	}

	var resp apiResponse
	return c.callAPI(ctx, "users.admin.invite", params, &resp)
}

// InvalidateCache drops cached presence and team info.
func (c *realClient) InvalidateCache() {
	c.countsCache.Clear()
	c.teamCache.Clear()
}

// Shutdown stops background goroutines.
func (c *realClient) Shutdown() {
	close(c.stopChan)
}

// callAPI posts a form-encoded request to the given Web API method and
// decodes the response into out. Transport failures surface as
// ErrSlackUnavailable; API-level failures are mapped to sentinels.
func (c *realClient) callAPI(ctx context.Context, method string, params url.Values, out envelope) error {
	start := time.Now()

	form := url.Values{}
	for key, values := range params {
		form[key] = values
	}
	form.Set("token", c.token)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+method, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", slackinerrors.ErrSlackUnavailable, method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", slackinerrors.ErrSlackUnavailable, method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", slackinerrors.ErrSlackUnavailable, method, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", slackinerrors.ErrSlackUnavailable, method, err)
	}

	logger.SlackEvent(method, float64(time.Since(start).Milliseconds())).Msg("slack api call")

	if !out.ok() {
		return mapError(out.code())
	}
	return nil
}

// mapError translates Slack error codes into package sentinels.
func mapError(code string) error {
	switch code {
	case "already_invited":
		return slackinerrors.ErrAlreadyInvited
	case "already_in_team", "already_in_team_invited_user":
		return slackinerrors.ErrAlreadyInTeam
	case "invalid_email":
		return slackinerrors.ErrInvalidEmail
	case "not_authed", "invalid_auth", "token_revoked", "account_inactive":
		return slackinerrors.ErrInvalidToken
	case "paid_teams_only", "not_allowed", "invite_limit_reached":
		return slackinerrors.ErrInviteDisabled
	default:
		return fmt.Errorf("slack api error: %s", code)
	}
}
