package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestInterestFromChoice(t *testing.T) {
	for i, want := range Interests {
		got, ok := InterestFromChoice(i + 1)
		if !ok || got != want {
			t.Fatalf("choice %d: got %q ok=%v", i+1, got, ok)
		}
	}
	for _, bad := range []int{0, -1, 5} {
		if _, ok := InterestFromChoice(bad); ok {
			t.Fatalf("expected choice %d to be rejected", bad)
		}
	}
	if got, ok := ParseInterest(" Rent "); !ok || got != InterestRent {
		t.Fatalf("ParseInterest: got %q ok=%v", got, ok)
	}
}

func TestRepositoryFindMatchesBuildsFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	mock.ExpectQuery("SELECT id, title, location, price, area_sq_ft, key_amenities FROM properties").
		WithArgs("buy", "%Baner%", int64(9000000), DefaultLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "location", "price", "area_sq_ft", "key_amenities"}).
			AddRow("p1", "Sunrise", "Baner, Pune", int64(8500000), 980, []string{"Gym"}).
			AddRow("p2", "Moonlight", "Baner, Pune", int64(8900000), 1010, []string{}))

	got, err := repo.FindMatches(context.Background(), Criteria{Interest: InterestBuy, Location: " Baner ", MaxBudget: 9000000})
	if err != nil {
		t.Fatalf("find matches: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[0].KeyAmenities[0] != "Gym" {
		t.Fatalf("unexpected matches %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryFindMatchesEscapesLocationWildcards(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	mock.ExpectQuery(`location ILIKE \$1 ESCAPE`).
		WithArgs(`%100\%\_Baner\\%`, DefaultLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "location", "price", "area_sq_ft", "key_amenities"}))

	got, err := repo.FindMatches(context.Background(), Criteria{Location: `100%_Baner\`})
	if err != nil {
		t.Fatalf("find matches: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepositoryFindMatchesQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	mock.ExpectQuery("SELECT .* FROM properties").
		WithArgs(3).
		WillReturnError(errors.New("boom"))

	if _, err := repo.FindMatches(context.Background(), Criteria{Limit: 3}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRepositoryGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	mock.ExpectQuery("SELECT .* FROM properties WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepositoryWithQuerier(mock)
	p := Property{ID: "p1", Title: "Sunrise", Location: "Baner", Price: 100, AreaSqFt: 900, KeyAmenities: []string{"Gym"}}
	mock.ExpectExec("INSERT INTO properties").
		WithArgs("p1", "buy", "Sunrise", "Baner", int64(100), 900, []string{"Gym"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), InterestBuy, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(context.Background(), InterestBuy, Property{}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestStaticCatalogFilters(t *testing.T) {
	c := NewStaticCatalog(DemoListings())

	buy, err := c.FindMatches(context.Background(), Criteria{Interest: InterestBuy})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(buy) != 3 {
		t.Fatalf("expected 3 buy listings, got %d", len(buy))
	}
	if buy[0].ID != "pune-wakad-1bhk" {
		t.Fatalf("expected cheapest first, got %s", buy[0].ID)
	}

	baner, _ := c.FindMatches(context.Background(), Criteria{Interest: InterestBuy, Location: "baner"})
	if len(baner) != 1 || baner[0].ID != "pune-baner-2bhk" {
		t.Fatalf("unexpected location filter result %+v", baner)
	}

	budget, _ := c.FindMatches(context.Background(), Criteria{Interest: InterestBuy, MaxBudget: 5000000})
	if len(budget) != 1 {
		t.Fatalf("expected budget filter to leave 1, got %d", len(budget))
	}

	none, _ := c.FindMatches(context.Background(), Criteria{Interest: InterestPlot, Location: "Mumbai"})
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}

	limited, _ := c.FindMatches(context.Background(), Criteria{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("expected limit 2, got %d", len(limited))
	}
}

func TestStaticCatalogHonoursCancelledContext(t *testing.T) {
	c := NewStaticCatalog(DemoListings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FindMatches(ctx, Criteria{}); err == nil {
		t.Fatalf("expected context error")
	}
}
