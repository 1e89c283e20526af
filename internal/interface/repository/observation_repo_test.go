package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"flight-price-tracker/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm open error: %v", err)
	}
	return db, mock
}

func TestObservationSaveAllUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormObservationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "price_observations"`) + `.*` +
		regexp.QuoteMeta(`ON CONFLICT ("message_id","position") DO UPDATE SET`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	observations := []entity.PriceObservation{
		{MessageID: "<a@example.com>", Position: 0, ObservationDate: "Thu, 16 Oct 2025", Price: "349"},
		{MessageID: "<a@example.com>", Position: 1, ObservationDate: "Thu, 16 Oct 2025", Price: "412"},
	}
	if err := repo.SaveAll(context.Background(), observations); err != nil {
		t.Fatalf("SaveAll() error = %v; want nil", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// insertArgs matches one inserted row at position 0; columns follow PriceObservationRow
func insertArgs(messageID, price string) []driver.Value {
	args := []driver.Value{messageID, int64(0)}
	for i := 0; i < 9; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	args = append(args, price)
	for i := 0; i < 3; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	return args
}

func TestObservationSaveAllRepeatedMessage(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormObservationRepository(db)

	// Two rows for one key in a single upsert would be rejected by PostgreSQL, so only
	// <a> (with its last price) and <b> are sent.
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "price_observations"`) + `.*` +
		regexp.QuoteMeta(`ON CONFLICT ("message_id","position") DO UPDATE SET`)).
		WithArgs(append(insertArgs("<a@example.com>", "360"), insertArgs("<b@example.com>", "331")...)...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	observations := []entity.PriceObservation{
		{MessageID: "<a@example.com>", Position: 0, Price: "349"},
		{MessageID: "<b@example.com>", Position: 0, Price: "331"},
		{MessageID: "<a@example.com>", Position: 0, Price: "360"},
	}
	if err := repo.SaveAll(context.Background(), observations); err != nil {
		t.Fatalf("SaveAll() error = %v; want nil", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestObservationHasMessage(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{"stored", 2, true},
		{"unknown", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewGormObservationRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "price_observations" WHERE message_id = $1`)).
				WithArgs("<a@example.com>").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))

			got, err := repo.HasMessage(context.Background(), "<a@example.com>")
			if err != nil {
				t.Fatalf("HasMessage() error = %v; want nil", err)
			}
			if got != tt.want {
				t.Fatalf("HasMessage() = %v; want %v", got, tt.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestObservationSaveAllEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormObservationRepository(db)

	if err := repo.SaveAll(context.Background(), nil); err != nil {
		t.Fatalf("SaveAll(nil) error = %v; want nil", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestObservationList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormObservationRepository(db)

	observedAt := time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "message_id", "position", "variant", "observation_date", "observed_at",
		"direction1", "date1", "time1", "direction2", "date2", "time2", "price", "label",
	}).
		AddRow(1, "<a@example.com>", 0, "english_single", "Thu, 16 Oct 2025", observedAt,
			"ZRH-LIS", "Thu, 23 Oct", "10:40", "LIS-ZRH", "Tue, 28 Oct", "18:05", "349",
			"ZRH-LIS:LIS-ZRH Thu, 23 Oct - Tue, 28 Oct :: 10:40 - 18:05").
		AddRow(2, "<b@example.com>", 0, "italian_single", "Fri, 17 Oct 2025", nil,
			"ZRH-LIS", "Thu, 23 Oct", "10:40", "LIS-ZRH", "Tue, 28 Oct", "18:05", "331",
			"ZRH-LIS:LIS-ZRH Thu, 23 Oct - Tue, 28 Oct :: 10:40 - 18:05")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "price_observations" ORDER BY id`)).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v; want nil", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d observations; want 2", len(got))
	}
	if got[0].Variant != entity.VariantEnglishSingle || got[0].Price != "349" {
		t.Fatalf("List()[0] = %+v; want english_single at 349", got[0])
	}
	if got[1].MessageID != "<b@example.com>" || got[1].Price != "331" {
		t.Fatalf("List()[1] = %+v; want <b@example.com> at 331", got[1])
	}
	if got[0].Label != got[1].Label {
		t.Fatalf("List() labels differ: %q vs %q", got[0].Label, got[1].Label)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
