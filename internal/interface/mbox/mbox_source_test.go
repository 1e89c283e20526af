package mbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/pkg/logger"
)

const archive = "From no-reply@skyscanner.net Thu Oct 16 08:00:00 2025\n" +
	"From: Skyscanner <no-reply@skyscanner.net>\n" +
	"Subject: Price update\n" +
	"Date: Thu, 16 Oct 2025 08:00:00 +0200\n" +
	"Message-ID: <first@skyscanner.net>\n" +
	"Content-Type: text/plain; charset=utf-8\n" +
	"\n" +
	"Zurich to Lisbon\n" +
	">From the team\n" +
	"\n" +
	"From no-reply@skyscanner.net Fri Oct 17 08:00:00 2025\n" +
	"From: Skyscanner <no-reply@skyscanner.net>\n" +
	"Subject: Price update\n" +
	"Date: Fri, 17 Oct 2025 08:00:00 +0200\n" +
	"Message-ID: <second@skyscanner.net>\n" +
	"Content-Type: text/plain; charset=utf-8\n" +
	"\n" +
	"Da Zurigo a Lisbona\n"

func writeArchive(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mbox")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write mbox: %v", err)
	}
	return path
}

func TestMboxSourceWalk(t *testing.T) {
	source := NewMboxSource(writeArchive(t, archive), logger.NewNop())

	var got []*entity.Message
	err := source.Walk(context.Background(), func(msg *entity.Message) error {
		got = append(got, msg)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v; want nil", err)
	}

	if len(got) != 2 {
		t.Fatalf("Walk() yielded %d messages; want 2", len(got))
	}
	if got[0].MessageID != "first@skyscanner.net" || got[1].MessageID != "second@skyscanner.net" {
		t.Fatalf("Walk() order = %q, %q; want first, second", got[0].MessageID, got[1].MessageID)
	}
	if got[0].Source != "mbox" {
		t.Fatalf("Source = %q; want mbox", got[0].Source)
	}
	if !strings.Contains(got[0].Body, "Zurich to Lisbon") {
		t.Fatalf("Body = %q; want it to contain the route", got[0].Body)
	}
	if !strings.Contains(got[1].Body, "Da Zurigo a Lisbona") {
		t.Fatalf("Body = %q; want it to contain the Italian route", got[1].Body)
	}
}

func TestMboxSourceStopsOnCallbackError(t *testing.T) {
	source := NewMboxSource(writeArchive(t, archive), logger.NewNop())
	stop := errors.New("stop")

	calls := 0
	err := source.Walk(context.Background(), func(*entity.Message) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Walk() error = %v; want %v", err, stop)
	}
	if calls != 1 {
		t.Fatalf("callback called %d times; want 1", calls)
	}
}

func TestMboxSourceMissingArchive(t *testing.T) {
	source := NewMboxSource(filepath.Join(t.TempDir(), "missing"), logger.NewNop())

	err := source.Walk(context.Background(), func(*entity.Message) error { return nil })
	if err == nil {
		t.Fatalf("Walk() on a missing archive error = nil; want error")
	}
}
