package sms

import (
	"context"
	"encoding/json"
	"fmt"

	"FlockCheck/config"
)

// SendPage sends one guardian page: "pager N, please return to LOCATION".
// The template takes the pager number and the room name as variables.
func SendPage(ctx context.Context, phone string, pagerNumber int, locationName string) (*SendResponse, error) {
	cfg := config.Cfg

	param, err := json.Marshal(map[string]string{
		"pager":    fmt.Sprintf("%d", pagerNumber),
		"location": locationName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page template params: %w", err)
	}

	return GetClient().SendSingle(ctx, phone, cfg.SMSSignName, cfg.SMSTemplateCode, string(param))
}
