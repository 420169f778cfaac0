package sms

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"FlockCheck/config"
	"FlockCheck/pkg/logger"
)

// SendResponse is the provider's answer for one message.
type SendResponse struct {
	MessageID  string // provider message id (BizId for aliyun)
	StatusCode string
	Code       string
	Message    string
	RequestID  string
	Provider   string
	Template   string
}

// Client sends template SMS messages. templateParam is a JSON string of
// template variables.
type Client interface {
	SendSingle(ctx context.Context, phone, signName, templateCode, templateParam string) (*SendResponse, error)
	SendBatch(ctx context.Context, phones []string, signName, templateCode string, templateParams []string) error
}

var (
	smsClient Client
	smsOnce   sync.Once
	smsErr    error
)

func Init() error {
	smsOnce.Do(func() {
		cfg := config.Cfg

		switch cfg.SMSProvider {
		case "aliyun":
			smsClient, smsErr = NewAliyunClient()
		case "mock":
			smsClient = NewMockClient()
		default:
			smsErr = fmt.Errorf("unsupported SMS provider: %s", cfg.SMSProvider)
		}

		if smsErr != nil {
			logger.Logger.Error("Failed to initialize SMS client", zap.Error(smsErr))
			return
		}

		logger.Logger.Info("SMS client initialized successfully",
			zap.String("provider", cfg.SMSProvider),
		)
	})

	return smsErr
}

func GetClient() Client {
	if smsClient == nil {
		panic("SMS client not initialized, call sms.Init() first")
	}
	return smsClient
}

// NonRetryableError marks a provider rejection that a retry cannot fix,
// typically a template or signature misconfiguration.
type NonRetryableError struct {
	Code    string
	Message string
	Hint    string
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Hint)
}

func IsNonRetryable(err error) bool {
	_, ok := err.(*NonRetryableError)
	return ok
}
