package usecase

import (
	"context"
	"strings"

	"flight-price-tracker/internal/domain/entity"
)

type fakeExtractor struct {
	variant entity.Variant
	marker  string
	prices  []string // one observation per entry; "" yields an unpriced one
	panics  bool
}

func (f *fakeExtractor) Variant() entity.Variant { return f.variant }

func (f *fakeExtractor) CanHandle(text string) bool { return strings.Contains(text, f.marker) }

func (f *fakeExtractor) Extract(msg *entity.Message) []entity.PriceObservation {
	if f.panics {
		panic("layout changed")
	}
	out := make([]entity.PriceObservation, 0, len(f.prices))
	for i, price := range f.prices {
		out = append(out, entity.PriceObservation{
			MessageID: msg.MessageID,
			Position:  i,
			Variant:   f.variant,
			Price:     price,
			Label:     "ZRH-LIS:LIS-ZRH",
		})
	}
	return out
}

type fakeRouter struct {
	extractors []Extractor
}

func (r *fakeRouter) Register(extractor Extractor) {
	r.extractors = append(r.extractors, extractor)
}

func (r *fakeRouter) GetExtractor(text string) Extractor {
	for _, e := range r.extractors {
		if e.CanHandle(text) {
			return e
		}
	}
	return nil
}

type fakeSource struct {
	messages []*entity.Message
	err      error
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Walk(ctx context.Context, fn func(*entity.Message) error) error {
	for _, msg := range s.messages {
		if err := fn(msg); err != nil {
			return err
		}
	}
	return s.err
}

type memoryMessageLog struct {
	logs map[string]*entity.MessageLog
}

func newMemoryMessageLog() *memoryMessageLog {
	return &memoryMessageLog{logs: make(map[string]*entity.MessageLog)}
}

func (m *memoryMessageLog) Save(ctx context.Context, log *entity.MessageLog) error {
	m.logs[log.MessageID] = log
	return nil
}

func (m *memoryMessageLog) FindByMessageID(ctx context.Context, messageID string) (*entity.MessageLog, error) {
	return m.logs[messageID], nil
}

func (m *memoryMessageLog) CountByStatus(ctx context.Context, runID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, log := range m.logs {
		if log.RunID == runID {
			counts[log.ProcessStatus]++
		}
	}
	return counts, nil
}

type memoryStore struct {
	rows []entity.PriceObservation
}

func (s *memoryStore) SaveAll(ctx context.Context, observations []entity.PriceObservation) error {
	for _, o := range observations {
		replaced := false
		for i, row := range s.rows {
			if row.MessageID == o.MessageID && row.Position == o.Position {
				s.rows[i] = o
				replaced = true
			}
		}
		if !replaced {
			s.rows = append(s.rows, o)
		}
	}
	return nil
}

func (s *memoryStore) HasMessage(ctx context.Context, messageID string) (bool, error) {
	for _, row := range s.rows {
		if row.MessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) List(ctx context.Context) ([]entity.PriceObservation, error) {
	return append([]entity.PriceObservation(nil), s.rows...), nil
}

type captureExporter struct {
	calls   int
	records []entity.PriceObservation
	err     error
}

func (e *captureExporter) Export(ctx context.Context, records []entity.PriceObservation) error {
	e.calls++
	e.records = records
	return e.err
}

func newTestRouter() *fakeRouter {
	r := &fakeRouter{}
	r.Register(&fakeExtractor{variant: entity.VariantItalianSingle, marker: "Da Zurigo a Lisbona", prices: []string{"331"}})
	r.Register(&fakeExtractor{variant: entity.VariantEnglishDouble, marker: "2 saved flights", prices: []string{"349", ""}})
	r.Register(&fakeExtractor{variant: entity.VariantEnglishSingle, marker: "Zurich to Lisbon", prices: []string{""}})
	r.Register(&fakeExtractor{variant: "broken", marker: "BROKEN", panics: true})
	return r
}

func msg(id, body string) *entity.Message {
	return &entity.Message{MessageID: id, Source: "fake", Subject: "Price update", Body: body}
}
