// Package bot pushes moderation alerts to the ops slack channel.
package bot

import (
	"fmt"
	"os"

	"github.com/plaza-social/plaza/model"
	Logger "github.com/plaza-social/plaza/utils/log"
	"github.com/slack-go/slack"
)

func buildSubjectLink(report model.Report) string {
	switch report.SubjectType {
	case model.SubjectTypePost:
		return fmt.Sprintf("https://plaza.social/posts/%s", report.SubjectID)
	case model.SubjectTypeComment:
		return fmt.Sprintf("https://plaza.social/comments/%s", report.SubjectID)
	default:
		return fmt.Sprintf("https://plaza.social/users/%s", report.SubjectID)
	}
}

func buildReportBlocks(report model.Report) []slack.Block {
	header := slack.NewContextBlock("",
		slack.NewTextBlockObject("mrkdwn",
			fmt.Sprintf("*New %s report* <%s|%s>", report.SubjectType, buildSubjectLink(report), report.SubjectID),
			false, false))

	reason := report.Reason
	if len(reason) > 600 {
		reason = reason[:600] + "..."
	}
	body := slack.NewContextBlock("",
		slack.NewTextBlockObject("mrkdwn",
			fmt.Sprintf("reporter: `%s`\n>%s", report.ReporterID, reason),
			false, false))

	return []slack.Block{header, body}
}

// PushReportViaWebhook is an async call to push a moderation report to
// the ops channel. Best-effort: a slack outage never blocks or fails
// the report endpoint.
func PushReportViaWebhook(report model.Report) {
	webhookUrl := os.Getenv("SLACK_MODERATION_WEBHOOK")
	if webhookUrl == "" {
		return
	}

	webhookMsg := &slack.WebhookMessage{
		Blocks: &slack.Blocks{BlockSet: buildReportBlocks(report)},
	}

	go func() {
		if err := slack.PostWebhook(webhookUrl, webhookMsg); err != nil {
			Logger.Log.Errorf("fail to push moderation report %s to slack: %v", report.Id, err)
		}
	}()
}
