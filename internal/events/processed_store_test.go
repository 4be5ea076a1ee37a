package events

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestProcessedStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newProcessedStoreWithExec(mock)

	mock.ExpectExec("INSERT INTO processed_events").WithArgs("twilio", "SM1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	ok, err := store.MarkProcessed(context.Background(), "twilio", "SM1")
	if err != nil || !ok {
		t.Fatalf("expected first claim to succeed, got %v %v", ok, err)
	}

	mock.ExpectExec("INSERT INTO processed_events").WithArgs("twilio", "SM1").WillReturnResult(pgxmock.NewResult("INSERT", 0))
	ok, err = store.MarkProcessed(context.Background(), "twilio", "SM1")
	if err != nil || ok {
		t.Fatalf("expected duplicate claim to be rejected, got %v %v", ok, err)
	}

	mock.ExpectExec("DELETE FROM processed_events").WithArgs("twilio", "SM1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := store.Forget(context.Background(), "twilio", "SM1"); err != nil {
		t.Fatalf("forget: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProcessedStoreErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	store := newProcessedStoreWithExec(mock)

	if _, err := store.MarkProcessed(context.Background(), "twilio", " "); err == nil {
		t.Fatalf("expected error for empty event id")
	}
	mock.ExpectExec("INSERT INTO processed_events").WithArgs("twilio", "SM2").WillReturnError(errors.New("down"))
	if _, err := store.MarkProcessed(context.Background(), "twilio", "SM2"); err == nil {
		t.Fatalf("expected db error")
	}
}
