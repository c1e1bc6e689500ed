package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"slackin/internal/slack"
)

var (
	usersTotalDesc        = prometheus.NewDesc("slackin_users_total", "Registered team members, bots and deleted users excluded", nil, nil)
	usersActiveDesc       = prometheus.NewDesc("slackin_users_active", "Team members currently online", nil, nil)
	slackConnectedDesc    = prometheus.NewDesc("slackin_slack_connected", "Slack API reachability (1=connected,0=disconnected)", nil, nil)
	lastScrapeSuccessDesc = prometheus.NewDesc("slackin_presence_last_scrape_success", "Whether the last presence scrape succeeded (1) or failed (0)", nil, nil)
)

type presenceCollector struct {
	slackClient slack.Client
}

// NewPresenceCollector returns a Prometheus collector exposing team size and
// online-presence gauges. Scrapes ride the slack client's counts cache, so
// a tight scrape interval does not hammer the Slack API.
func NewPresenceCollector(slackClient slack.Client) prometheus.Collector {
	return &presenceCollector{slackClient: slackClient}
}

func (collector *presenceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- usersTotalDesc
	ch <- usersActiveDesc
	ch <- slackConnectedDesc
	ch <- lastScrapeSuccessDesc
}

func (collector *presenceCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()

	connected := 1.0
	if err := collector.slackClient.CheckConnection(ctx); err != nil {
		connected = 0.0
	}
	ch <- prometheus.MustNewConstMetric(slackConnectedDesc, prometheus.GaugeValue, connected)

	counts, err := collector.slackClient.UserCounts(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(lastScrapeSuccessDesc, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(lastScrapeSuccessDesc, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(usersTotalDesc, prometheus.GaugeValue, float64(counts.Total))
	ch <- prometheus.MustNewConstMetric(usersActiveDesc, prometheus.GaugeValue, float64(counts.Active))
}

// NewInviteCounter returns the counter tracking invite submissions by
// outcome ("sent", "already_invited", "invalid", "failed", ...).
func NewInviteCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "slackin_invites_total",
		Help: "Invite submissions grouped by outcome",
	}, []string{"outcome"})
}
