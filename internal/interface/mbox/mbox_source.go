package mbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gombox "github.com/emersion/go-mbox"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/domain/repository"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/utils"
)

// MboxSource reads messages from a local mbox archive
type MboxSource struct {
	path   string
	logger logger.Logger
}

// NewMboxSource creates a new mbox message source
func NewMboxSource(path string, logger logger.Logger) repository.MessageSource {
	return &MboxSource{
		path:   path,
		logger: logger,
	}
}

// Name identifies the source in logs and message logs
func (s *MboxSource) Name() string {
	return "mbox"
}

// Walk hands every parseable message to fn, in archive order
func (s *MboxSource) Walk(ctx context.Context, fn func(*entity.Message) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer f.Close()

	reader := gombox.NewReader(f)
	skipped := 0
	for index := 0; ; index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := reader.NextMessage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read mbox message %d: %w", index, err)
		}

		raw, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read mbox message %d: %w", index, err)
		}

		msg, err := utils.ParseRawMessage(raw, s.Name())
		if err != nil {
			s.logger.Warn("Skipping unparseable message", "index", index, "error", err)
			skipped++
			continue
		}

		if err := fn(msg); err != nil {
			return err
		}
	}

	if skipped > 0 {
		s.logger.Info("Mbox read completed", "path", s.path, "unparseable", skipped)
	}
	return nil
}
