package types

import (
	"strings"
)

// FailureReason 外部调用失败原因类型
type FailureReason string

const (
	// FailureReasonAuth 认证错误
	FailureReasonAuth FailureReason = "auth"
	// FailureReasonRateLimit 速率限制
	FailureReasonRateLimit FailureReason = "rate_limit"
	// FailureReasonTimeout 超时
	FailureReasonTimeout FailureReason = "timeout"
	// FailureReasonNetwork 网络错误
	FailureReasonNetwork FailureReason = "network"
	// FailureReasonUnknown 未知错误
	FailureReasonUnknown FailureReason = "unknown"
)

// ErrorClassifier 错误分类器接口
type ErrorClassifier interface {
	ClassifyError(err error) FailureReason
	IsTransient(err error) bool
}

// SimpleErrorClassifier 基于错误文本的简单分类器
type SimpleErrorClassifier struct {
	authPatterns      []string
	rateLimitPatterns []string
	timeoutPatterns   []string
	networkPatterns   []string
}

// NewSimpleErrorClassifier 创建简单错误分类器
func NewSimpleErrorClassifier() *SimpleErrorClassifier {
	return &SimpleErrorClassifier{
		authPatterns: []string{
			"invalid api key", "incorrect api key", "invalid token",
			"unauthorized", "forbidden", "access denied", "401", "403",
		},
		rateLimitPatterns: []string{
			"rate limit", "too many requests", "429", "quota exceeded",
			"retry after", "flood", "overloaded",
		},
		timeoutPatterns: []string{
			"timeout", "timed out", "deadline exceeded", "context deadline exceeded",
		},
		networkPatterns: []string{
			"connection refused", "connection reset", "no such host",
			"network is unreachable", "bad gateway", "502", "503", "504", "eof",
		},
	}
}

// ClassifyError 分类错误
func (c *SimpleErrorClassifier) ClassifyError(err error) FailureReason {
	if err == nil {
		return FailureReasonUnknown
	}

	errMsg := strings.ToLower(err.Error())

	if c.matchesAny(errMsg, c.rateLimitPatterns) {
		return FailureReasonRateLimit
	}
	if c.matchesAny(errMsg, c.timeoutPatterns) {
		return FailureReasonTimeout
	}
	if c.matchesAny(errMsg, c.networkPatterns) {
		return FailureReasonNetwork
	}
	if c.matchesAny(errMsg, c.authPatterns) {
		return FailureReasonAuth
	}

	return FailureReasonUnknown
}

// IsTransient 判断是否为可重试的瞬时错误
func (c *SimpleErrorClassifier) IsTransient(err error) bool {
	switch c.ClassifyError(err) {
	case FailureReasonRateLimit, FailureReasonTimeout, FailureReasonNetwork:
		return true
	default:
		return false
	}
}

// matchesAny 检查错误消息是否匹配任何模式
func (c *SimpleErrorClassifier) matchesAny(errMsg string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
