package bookings

import (
	"context"
	"errors"
	"testing"
	"time"
)

func validRequest() Request {
	return Request{
		UserID:        "user-1",
		PropertyID:    "p1",
		PropertyTitle: "Sunrise",
		Name:          "Asha Patil",
		Phone:         "9876543210",
		TimeText:      "25/12/2025 11am (Thursday)",
		Notes:         "Parking",
		Language:      "en",
	}
}

func TestServiceCreateAndGet(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	fixed := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	id, err := svc.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected booking id")
	}
	b, err := svc.GetBooking(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Status != StatusRequested || b.Phone != "9876543210" || !b.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestServiceCreateValidates(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	cases := map[string]func(*Request){
		"property": func(r *Request) { r.PropertyID = "" },
		"name":     func(r *Request) { r.Name = " " },
		"phone":    func(r *Request) { r.Phone = "" },
		"time":     func(r *Request) { r.TimeText = "" },
	}
	for name, mutate := range cases {
		req := validRequest()
		mutate(&req)
		if _, err := svc.CreateBooking(context.Background(), req); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestServiceGetMalformedID(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	if _, err := svc.GetBooking(context.Background(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewServicePanicsWithoutStore(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewService(nil, nil)
}
