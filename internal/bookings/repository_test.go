package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestRepositoryInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	id := uuid.New()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(toPGUUID(id), "user-1", "p1", "Sunrise", "Asha", "9876543210", "tomorrow", "None", "en", StatusRequested, toPGTime(created)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Insert(context.Background(), Booking{
		ID: id.String(), UserID: "user-1", PropertyID: "p1", PropertyTitle: "Sunrise", Name: "Asha",
		Phone: "9876543210", TimeText: "tomorrow", Notes: "None", Language: "en", Status: StatusRequested, CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryInsertRejectsBadID(t *testing.T) {
	repo := NewRepositoryWithQuerier(nil)
	if err := repo.Insert(context.Background(), Booking{ID: "nope"}); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestRepositoryGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	id := uuid.New()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT user_id, property_id").
		WithArgs(toPGUUID(id)).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "property_id", "property_title", "name", "phone", "time_text", "notes", "language", "status", "created_at"}).
			AddRow("user-1", "p1", "Sunrise", "Asha", "9876543210", "tomorrow", "None", "mr", StatusRequested, toPGTime(created)))

	b, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.ID != id.String() || b.Name != "Asha" || b.Language != "mr" || !b.CreatedAt.Equal(created) {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestRepositoryGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	id := uuid.New()
	mock.ExpectQuery("SELECT user_id").WithArgs(toPGUUID(id)).WillReturnError(pgx.ErrNoRows)

	if _, err := repo.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	id := uuid.New()
	if err := repo.Insert(context.Background(), Booking{ID: id.String(), Name: "Asha"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Insert(context.Background(), Booking{ID: id.String()}); err == nil {
		t.Fatalf("expected duplicate error")
	}
	got, err := repo.Get(context.Background(), id)
	if err != nil || got.Name != "Asha" {
		t.Fatalf("unexpected get %+v err=%v", got, err)
	}
	if _, err := repo.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
