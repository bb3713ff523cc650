package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ntfyDestination ntfy://HOST/TOPIC，ntfys 使用 HTTPS
type ntfyDestination struct {
	endpoint string
	client   *http.Client
}

func newNtfyDestination(u *url.URL) (*ntfyDestination, error) {
	topic := strings.Trim(u.Path, "/")
	if u.Host == "" || topic == "" {
		return nil, fmt.Errorf("ntfy connection requires ntfy://HOST/TOPIC")
	}
	scheme := "http"
	if u.Scheme == "ntfys" {
		scheme = "https"
	}
	return &ntfyDestination{
		endpoint: fmt.Sprintf("%s://%s/%s", scheme, u.Host, topic),
		client:   &http.Client{Timeout: httpTimeout},
	}, nil
}

func (n *ntfyDestination) Notify(ctx context.Context, body string, attachments []string) error {
	if body != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(body))
		if err != nil {
			return err
		}
		if err := doRequest(n.client, req); err != nil {
			return fmt.Errorf("ntfy publish: %w", err)
		}
	}

	// ntfy 支持 PUT 上传文件作为附件
	for _, path := range attachments {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open attachment %s: %w", filepath.Base(path), err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, n.endpoint, f)
		if err != nil {
			f.Close()
			return err
		}
		req.Header.Set("Filename", filepath.Base(path))
		err = doRequest(n.client, req)
		f.Close()
		if err != nil {
			return fmt.Errorf("ntfy upload %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// barkDestination bark://HOST/DEVICE_KEY
type barkDestination struct {
	endpoint string
	client   *http.Client
}

func newBarkDestination(u *url.URL) (*barkDestination, error) {
	key := strings.Trim(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("bark connection requires bark://HOST/DEVICE_KEY")
	}
	scheme := "http"
	if u.Scheme == "barks" {
		scheme = "https"
	}
	return &barkDestination{
		endpoint: fmt.Sprintf("%s://%s/%s", scheme, u.Host, key),
		client:   &http.Client{Timeout: httpTimeout},
	}, nil
}

func (b *barkDestination) Notify(ctx context.Context, body string, attachments []string) error {
	payload := map[string]string{"body": body}
	if len(attachments) > 0 {
		payload["body"] = body + fmt.Sprintf("\n(%d attachments omitted)", len(attachments))
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := doRequest(b.client, req); err != nil {
		return fmt.Errorf("bark push: %w", err)
	}
	return nil
}

// webhookDestination 通用 JSON webhook，收到 {"text": ..., "attachments": [...]}
type webhookDestination struct {
	endpoint string
	client   *http.Client
}

func newWebhookDestination(endpoint string) *webhookDestination {
	return &webhookDestination{
		endpoint: endpoint,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

func (w *webhookDestination) Notify(ctx context.Context, body string, attachments []string) error {
	names := make([]string, 0, len(attachments))
	for _, path := range attachments {
		names = append(names, filepath.Base(path))
	}
	buf, err := json.Marshal(map[string]any{
		"text":        body,
		"attachments": names,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := doRequest(w.client, req); err != nil {
		return fmt.Errorf("webhook push: %w", err)
	}
	return nil
}

func doRequest(client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
