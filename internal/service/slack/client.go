package slack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"GridPull/internal/domain/models"
	xhttp "GridPull/pkg/http"
	applogger "GridPull/pkg/logger"
)

// Client posts notifications to a Slack incoming webhook.
type Client struct {
	webhookURL string
	http       *xhttp.Client
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		http:       xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
	}
}

// Enabled reports whether a webhook is configured.
func (c *Client) Enabled() bool { return c.webhookURL != "" }

// SendMessage posts a plain text message.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if !c.Enabled() {
		return nil
	}
	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.webhookURL,
		Body:   map[string]interface{}{"text": text},
	}, nil)
}

// SendSuccess posts a job success notification.
func (c *Client) SendSuccess(ctx context.Context, job, detail string) error {
	msg := fmt.Sprintf(":white_check_mark: *Success*: `%s` completed", job)
	if detail != "" {
		msg += "\n" + detail
	}
	return c.SendMessage(ctx, msg)
}

// SendFailure posts a job failure notification with the error.
func (c *Client) SendFailure(ctx context.Context, job string, err error) error {
	msg := fmt.Sprintf(":x: *Failure*: `%s` failed", job)
	if err != nil {
		msg += fmt.Sprintf("\n- Error: `%s`", err.Error())
	}
	return c.SendMessage(ctx, msg)
}

// SendLikeDayReport posts the ranked like days as a fixed-width table.
func (c *Client) SendLikeDayReport(ctx context.Context, report *models.LikeDayReport) error {
	if report == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Like days for %s* (%s, metric=%s)\n",
		report.TargetDate.Format("2006-01-02"), report.Hub, report.Metric)
	b.WriteString("```\n")
	fmt.Fprintf(&b, "%-4s %-12s %-10s %-10s\n", "rank", "date", "distance", "similarity")
	for _, d := range report.LikeDays {
		fmt.Fprintf(&b, "%-4d %-12s %-10.4f %-10.4f\n",
			d.Rank, d.Date.Format("2006-01-02"), d.Distance, d.Similarity)
	}
	b.WriteString("```")

	return c.SendMessage(ctx, b.String())
}

// NotifyLogs implements the log collector sink: aggregated error entries are
// posted as one summary message.
func (c *Client) NotifyLogs(ctx context.Context, subject string, logs []applogger.AggregatedLogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":warning: *%s* (%d unique)\n```\n", subject, len(logs))
	for _, l := range logs {
		fmt.Fprintf(&b, "[%s] x%d %s (%s)\n", l.Level, l.Count, l.Message, l.Caller)
	}
	b.WriteString("```")

	return c.SendMessage(ctx, b.String())
}

var _ applogger.Notifier = (*Client)(nil)
