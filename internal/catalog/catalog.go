package catalog

import (
	"context"
	"errors"
	"strings"
)

// Interest is the listing category a prospect is looking for.
type Interest string

const (
	InterestBuy        Interest = "buy"
	InterestRent       Interest = "rent"
	InterestCommercial Interest = "commercial"
	InterestPlot       Interest = "plot"
)

// Interests lists categories in menu order (menu choice 1 is Interests[0]).
var Interests = []Interest{InterestBuy, InterestRent, InterestCommercial, InterestPlot}

// ErrNotFound is returned when a property does not exist.
var ErrNotFound = errors.New("catalog: property not found")

// InterestFromChoice maps a 1-based menu choice to an Interest.
func InterestFromChoice(choice int) (Interest, bool) {
	if choice < 1 || choice > len(Interests) {
		return "", false
	}
	return Interests[choice-1], true
}

// ParseInterest accepts a canonical interest code in any case.
func ParseInterest(raw string) (Interest, bool) {
	candidate := Interest(strings.ToLower(strings.TrimSpace(raw)))
	for _, interest := range Interests {
		if interest == candidate {
			return interest, true
		}
	}
	return "", false
}

// Property is a listing summary as shown to prospects.
type Property struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Location     string   `json:"location"`
	Price        int64    `json:"price"`
	AreaSqFt     int      `json:"area_sq_ft"`
	KeyAmenities []string `json:"key_amenities,omitempty"`
}

// Criteria filters catalog queries. Zero values mean "any".
type Criteria struct {
	Interest  Interest
	Location  string
	MaxBudget int64
	Limit     int
}

// DefaultLimit caps the number of matches offered in one list.
const DefaultLimit = 5

func (c Criteria) limit() int {
	if c.Limit <= 0 {
		return DefaultLimit
	}
	return c.Limit
}

// Finder returns listings matching the criteria, best match first.
type Finder interface {
	FindMatches(ctx context.Context, criteria Criteria) ([]Property, error)
}
