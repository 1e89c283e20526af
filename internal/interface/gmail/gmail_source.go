package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/domain/repository"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/utils"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSource reads price alerts straight from a Gmail mailbox
type GmailSource struct {
	gmailService *gmail.Service
	query        string
	limiter      *rate.Limiter
	logger       logger.Logger
}

// NewGmailSource creates a new Gmail message source. requestsPerSecond caps message fetches.
func NewGmailSource(ctx context.Context, tokenSource oauth2.TokenSource, query string, requestsPerSecond int, logger logger.Logger) (repository.MessageSource, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailSource{
		gmailService: service,
		query:        query,
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:       logger,
	}, nil
}

// Name identifies the source in logs and message logs
func (s *GmailSource) Name() string {
	return "gmail"
}

// Walk fetches every message matching the query, oldest first
func (s *GmailSource) Walk(ctx context.Context, fn func(*entity.Message) error) error {
	ids, err := s.listMessageIDs(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Querying Gmail", "query", s.query, "messages", len(ids))

	fetched := 0
	// Gmail lists newest first
	for i := len(ids) - 1; i >= 0; i-- {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", ids[i]).Format("raw").Context(ctx).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "emailID", ids[i], "error", err)
			continue
		}

		raw, err := DecodeRaw(fullMsg.Raw)
		if err != nil {
			s.logger.Error("Failed to decode message", "emailID", ids[i], "error", err)
			continue
		}

		msg, err := utils.ParseRawMessage(raw, s.Name())
		if err != nil {
			s.logger.Warn("Skipping unparseable message", "emailID", ids[i], "error", err)
			continue
		}
		fetched++

		if err := fn(msg); err != nil {
			return err
		}
	}

	s.logger.Info("Email fetch completed", "listed", len(ids), "fetched", fetched)
	return nil
}

func (s *GmailSource) listMessageIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.gmailService.Users.Messages.List("me").Q(s.query).Pages(ctx, func(resp *gmail.ListMessagesResponse) error {
		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return ids, nil
}

// DecodeRaw decodes the base64url "raw" field of a Gmail message, padded or not
func DecodeRaw(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	if raw, err := base64.URLEncoding.DecodeString(data); err == nil {
		return raw, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return nil, fmt.Errorf("decode raw message: %w", err)
	}
	return raw, nil
}
