package imap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/domain/repository"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/utils"
)

// Options configures the IMAP source
type Options struct {
	Addr       string // host:port, TLS only
	Username   string
	Password   string
	Mailbox    string
	FromFilter string // substring of the From header, empty matches all
	SinceDays  int    // 0 searches the whole mailbox
}

// IMAPSource reads price alerts from an IMAP mailbox without marking them seen
type IMAPSource struct {
	opts   Options
	logger logger.Logger
}

// NewIMAPSource creates a new IMAP message source
func NewIMAPSource(opts Options, logger logger.Logger) repository.MessageSource {
	if opts.Mailbox == "" {
		opts.Mailbox = "INBOX"
	}
	return &IMAPSource{
		opts:   opts,
		logger: logger,
	}
}

// Name identifies the source in logs and message logs
func (s *IMAPSource) Name() string {
	return "imap"
}

// Walk fetches every matching message, oldest UID first, then hands them to fn
// after the connection is closed.
func (s *IMAPSource) Walk(ctx context.Context, fn func(*entity.Message) error) error {
	raws, err := s.fetchAll(ctx)
	if err != nil {
		return err
	}

	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := utils.ParseRawMessage(raw, s.Name())
		if err != nil {
			s.logger.Warn("Skipping unparseable message", "error", err)
			continue
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *IMAPSource) fetchAll(ctx context.Context) ([][]byte, error) {
	c, err := dialAndLogin(s.opts)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	// Best-effort close on context cancel.
	defer context.AfterFunc(ctx, func() { c.Close() })()

	if _, err := c.Select(s.opts.Mailbox, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", s.opts.Mailbox, err)
	}

	criteria := SearchCriteria(s.opts.FromFilter, s.opts.SinceDays, time.Now())
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search: %w", err)
	}

	uids := searchData.AllUIDs()
	s.logger.Info("Querying IMAP", "mailbox", s.opts.Mailbox, "from", s.opts.FromFilter, "messages", len(uids))
	if len(uids) == 0 {
		return nil, nil
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer fetchCmd.Close()

	raws := make([][]byte, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}
		if b := buf.FindBodySection(bodyAll); b != nil {
			raws = append(raws, append([]byte(nil), b...))
		}
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}

	if err := c.Logout().Wait(); err != nil {
		s.logger.Warn("IMAP logout failed", "error", err)
	}
	return raws, nil
}

// SearchCriteria builds the UID search for alerts from a sender in the last sinceDays days
func SearchCriteria(from string, sinceDays int, now time.Time) *imap.SearchCriteria {
	criteria := &imap.SearchCriteria{}
	if from != "" {
		criteria.Header = []imap.SearchCriteriaHeaderField{{Key: "From", Value: from}}
	}
	if sinceDays > 0 {
		criteria.Since = now.AddDate(0, 0, -sinceDays)
	}
	return criteria
}

func dialAndLogin(opts Options) (*imapclient.Client, error) {
	if opts.Addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if opts.Username == "" || opts.Password == "" {
		return nil, errors.New("imap username/password is required")
	}

	host, _, err := net.SplitHostPort(opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("imap addr %q: %w", opts.Addr, err)
	}

	c, err := imapclient.DialTLS(opts.Addr, &imapclient.Options{
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: host,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	if err := c.Login(opts.Username, opts.Password).Wait(); err != nil {
		c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}
