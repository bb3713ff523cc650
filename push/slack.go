package push

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/slack-go/slack"
)

// slackDestination slack://TOKEN@CHANNEL
type slackDestination struct {
	client  *slack.Client
	channel string
}

func newSlackDestination(u *url.URL) (*slackDestination, error) {
	token := ""
	if u.User != nil {
		token = u.User.Username()
	}
	channel := strings.TrimPrefix(u.Host, "#")
	if token == "" || channel == "" {
		return nil, fmt.Errorf("slack connection requires slack://TOKEN@CHANNEL")
	}

	return &slackDestination{
		client:  slack.New(token),
		channel: channel,
	}, nil
}

// Notify 发送 Slack 消息，附件逐个上传
func (s *slackDestination) Notify(ctx context.Context, body string, attachments []string) error {
	if body != "" {
		_, _, err := s.client.PostMessageContext(ctx, s.channel,
			slack.MsgOptionText(body, false),
		)
		if err != nil {
			return fmt.Errorf("slack post message: %w", err)
		}
	}

	for _, path := range attachments {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat attachment %s: %w", filepath.Base(path), err)
		}
		_, err = s.client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
			File:     path,
			FileSize: int(info.Size()),
			Filename: filepath.Base(path),
			Channel:  s.channel,
		})
		if err != nil {
			return fmt.Errorf("slack upload %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
