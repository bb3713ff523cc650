package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Provider AI 提供商接口
type Provider interface {
	// Rewrite 按提示词改写文本，images 为本地图片路径（可为空）
	Rewrite(ctx context.Context, prompt, text string, images []string) (string, error)
}

// generate 组装消息并调用底层模型，各提供商共用
func generate(ctx context.Context, model llms.Model, prompt, text string, images []string) (string, error) {
	parts := []llms.ContentPart{
		llms.TextPart(prompt + "\n\n" + text),
	}
	for _, path := range images {
		data, err := os.ReadFile(path)
		if err != nil {
			// 单张图片读不到不影响文本改写
			continue
		}
		parts = append(parts, llms.BinaryPart(mimeForImage(path), data))
	}

	messages := []llms.MessageContent{
		{Role: schema.ChatMessageTypeHuman, Parts: parts},
	}

	resp, err := model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Content, nil
}

func mimeForImage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
