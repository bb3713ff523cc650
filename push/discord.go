package push

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// discordDestination discord://WEBHOOK_ID/WEBHOOK_TOKEN
type discordDestination struct {
	session      *discordgo.Session
	webhookID    string
	webhookToken string
}

func newDiscordDestination(u *url.URL) (*discordDestination, error) {
	id := u.Host
	token := strings.Trim(u.Path, "/")
	if id == "" || token == "" {
		return nil, fmt.Errorf("discord connection requires discord://WEBHOOK_ID/WEBHOOK_TOKEN")
	}

	// webhook 调用不需要 bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	return &discordDestination{
		session:      session,
		webhookID:    id,
		webhookToken: token,
	}, nil
}

// Notify 通过 webhook 发送，附件随消息一起上传
func (d *discordDestination) Notify(ctx context.Context, body string, attachments []string) error {
	params := &discordgo.WebhookParams{Content: body}

	var opened []*os.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, path := range attachments {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open attachment %s: %w", filepath.Base(path), err)
		}
		opened = append(opened, f)
		params.Files = append(params.Files, &discordgo.File{
			Name:   filepath.Base(path),
			Reader: f,
		})
	}

	if _, err := d.session.WebhookExecute(d.webhookID, d.webhookToken, true, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord webhook execute: %w", err)
	}
	return nil
}
