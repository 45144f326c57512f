package devserver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

//go:embed seed.json
var seedJSON []byte

type seedProduct struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Supplier    string  `json:"supplier"`
	Price       *string `json:"price"`
	Image       *string `json:"image"`
}

// SeedProducts returns the embedded demo catalog with ids assigned in file order.
func SeedProducts() ([]catalog.ProductSummary, error) {
	return ParseSeed(seedJSON)
}

// ParseSeed turns a seed document into products. Rows without a name are
// skipped, slugs are made unique with a numeric suffix and the category is
// inferred from the product name.
func ParseSeed(data []byte) ([]catalog.ProductSummary, error) {
	var rows []seedProduct
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}

	products := make([]catalog.ProductSummary, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}

		base := slugify(name)
		slug := base

		for n := 2; seen[slug]; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
		}

		seen[slug] = true

		p := catalog.ProductSummary{
			ID:          int64(len(products) + 1),
			Name:        name,
			Slug:        slug,
			Description: strings.TrimSpace(row.Description),
			Supplier:    strings.TrimSpace(row.Supplier),
			Category:    inferCategory(name),
			Price:       parsePrice(row.Price),
		}

		if row.Image != nil {
			p.ImageURL = *row.Image
		}

		products = append(products, p)
	}

	return products, nil
}

// parsePrice accepts a decimal comma and falls back to zero.
func parsePrice(raw *string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(*raw), ",", "."))
	if err != nil {
		return decimal.Zero
	}

	return d
}

func slugify(text string) string {
	var b strings.Builder

	dash := false

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}

			dash = false

			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			dash = true
		}
	}

	if b.Len() == 0 {
		return "product"
	}

	return b.String()
}

var categoryRules = []struct {
	category string
	markers  []string
}{
	{"Насіння", []string{"насіння", "семена"}},
	{"Добрива", []string{"добрив", "fert"}},
	{"ЗЗР", []string{"фунгіцид", "фунгицид", "інсектицид", "гербіцид"}},
	{"Ґрунти/Субстрати", []string{"грунт", "ґрунт", "субстрат"}},
	{"Інвентар", []string{"горщик", "кашпо", "лоток"}},
}

func inferCategory(name string) string {
	n := strings.ToLower(name)

	for _, rule := range categoryRules {
		for _, marker := range rule.markers {
			if strings.Contains(n, marker) {
				return rule.category
			}
		}
	}

	return "Інше"
}
