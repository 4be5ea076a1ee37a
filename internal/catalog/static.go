package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Listing is a property tagged with its interest category.
type Listing struct {
	Interest Interest
	Property Property
}

// StaticCatalog serves listings from memory. It backs local development and
// tests when no database is configured.
type StaticCatalog struct {
	mu       sync.RWMutex
	listings []Listing
}

// NewStaticCatalog returns a catalog over the given listings.
func NewStaticCatalog(listings []Listing) *StaticCatalog {
	cp := make([]Listing, len(listings))
	copy(cp, listings)
	return &StaticCatalog{listings: cp}
}

// Add appends a listing.
func (c *StaticCatalog) Add(l Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = append(c.listings, l)
}

// FindMatches applies the same filters as the Postgres repository.
func (c *StaticCatalog) FindMatches(ctx context.Context, criteria Criteria) ([]Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	loc := strings.ToLower(strings.TrimSpace(criteria.Location))
	var out []Property
	for _, l := range c.listings {
		if criteria.Interest != "" && l.Interest != criteria.Interest {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(l.Property.Location), loc) {
			continue
		}
		if criteria.MaxBudget > 0 && l.Property.Price > criteria.MaxBudget {
			continue
		}
		out = append(out, l.Property)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > criteria.limit() {
		out = out[:criteria.limit()]
	}
	return out, nil
}

// DemoListings is a small Pune inventory used when no catalog database is
// configured.
func DemoListings() []Listing {
	return []Listing{
		{InterestBuy, Property{ID: "pune-baner-2bhk", Title: "Sunrise Residency 2BHK", Location: "Baner, Pune", Price: 8500000, AreaSqFt: 980, KeyAmenities: []string{"Gym", "Covered parking", "24x7 security"}}},
		{InterestBuy, Property{ID: "pune-kothrud-3bhk", Title: "Green Valley 3BHK", Location: "Kothrud, Pune", Price: 13500000, AreaSqFt: 1420, KeyAmenities: []string{"Clubhouse", "Garden", "Lift"}}},
		{InterestBuy, Property{ID: "pune-wakad-1bhk", Title: "Skyline Heights 1BHK", Location: "Wakad, Pune", Price: 4800000, AreaSqFt: 610, KeyAmenities: []string{"Lift", "Power backup"}}},
		{InterestRent, Property{ID: "pune-aundh-2bhk-rent", Title: "Aundh Court 2BHK (rent)", Location: "Aundh, Pune", Price: 32000, AreaSqFt: 900, KeyAmenities: []string{"Furnished", "Parking"}}},
		{InterestRent, Property{ID: "pune-hinjewadi-1bhk-rent", Title: "Tech Park Homes 1BHK (rent)", Location: "Hinjewadi, Pune", Price: 18000, AreaSqFt: 580, KeyAmenities: []string{"Semi-furnished", "Security"}}},
		{InterestCommercial, Property{ID: "pune-fc-road-shop", Title: "FC Road Retail Shop", Location: "Shivajinagar, Pune", Price: 22000000, AreaSqFt: 450, KeyAmenities: []string{"Street frontage", "Washroom"}}},
		{InterestCommercial, Property{ID: "pune-kharadi-office", Title: "EON Office Suite", Location: "Kharadi, Pune", Price: 31000000, AreaSqFt: 1800, KeyAmenities: []string{"Reception", "Cafeteria", "Parking"}}},
		{InterestPlot, Property{ID: "pune-mulshi-plot", Title: "Mulshi Hill-view Plot", Location: "Mulshi, Pune", Price: 3500000, AreaSqFt: 5400, KeyAmenities: []string{"Gated layout", "Clear title"}}},
	}
}
