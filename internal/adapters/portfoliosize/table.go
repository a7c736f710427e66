// Package portfoliosize resolves the capital a journal was sized against in a
// given month, loaded from a YAML file such as
//
//	default: 100000
//	months:
//	  - {month: January, year: 2024, size: 100000}
//	  - {month: April, year: 2024, size: 125000.50}
//
// A month without its own entry uses the latest earlier entry, so a deposit
// only needs to be recorded once.
package portfoliosize

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tradeJournal/internal/ports"
)

type fileEntry struct {
	Month string `yaml:"month"`
	Year  int    `yaml:"year"`
	Size  string `yaml:"size"`
}

type file struct {
	Default string      `yaml:"default"`
	Months  []fileEntry `yaml:"months"`
}

type period struct {
	key  int // year*12 + month-1
	size decimal.Decimal
}

// Table is an immutable month → size lookup. It is safe for concurrent use.
type Table struct {
	fallback decimal.Decimal
	periods  []period // sorted by key
}

// Load reads a table from path. An empty path yields a table that always
// returns fallback.
func Load(path string, fallback decimal.Decimal) (*Table, error) {
	if path == "" {
		return &Table{fallback: fallback}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio sizes file: %w", err)
	}
	t, err := Parse(data, fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse builds a table from YAML. A default in the document replaces fallback.
func Parse(data []byte, fallback decimal.Decimal) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio sizes: %w", err)
	}

	t := &Table{fallback: fallback}
	if f.Default != "" {
		d, err := decimal.NewFromString(f.Default)
		if err != nil {
			return nil, fmt.Errorf("invalid default size %q: %w", f.Default, err)
		}
		t.fallback = d
	}

	seen := make(map[int]bool, len(f.Months))
	for i, e := range f.Months {
		m, err := parseMonth(e.Month)
		if err != nil {
			return nil, fmt.Errorf("months[%d]: %w", i, err)
		}
		if e.Year <= 0 {
			return nil, fmt.Errorf("months[%d]: missing year", i)
		}
		size, err := decimal.NewFromString(e.Size)
		if err != nil {
			return nil, fmt.Errorf("months[%d]: invalid size %q: %w", i, e.Size, err)
		}
		k := key(m, e.Year)
		if seen[k] {
			return nil, fmt.Errorf("months[%d]: %s %d listed twice", i, m, e.Year)
		}
		seen[k] = true
		t.periods = append(t.periods, period{key: k, size: size})
	}
	sort.Slice(t.periods, func(i, j int) bool { return t.periods[i].key < t.periods[j].key })
	return t, nil
}

// SizeFor returns the size for the named month. Months before the first
// entry, and unknown month names, get the default.
func (t *Table) SizeFor(month string, year int) decimal.Decimal {
	m, err := parseMonth(month)
	if err != nil {
		return t.fallback
	}
	k := key(m, year)
	// first period after k, then step back one
	i := sort.Search(len(t.periods), func(i int) bool { return t.periods[i].key > k })
	if i == 0 {
		return t.fallback
	}
	return t.periods[i-1].size
}

// Resolver adapts the table to the engine's resolver type.
func (t *Table) Resolver() ports.PortfolioSizeResolver {
	return t.SizeFor
}

// Len returns the number of configured months.
func (t *Table) Len() int { return len(t.periods) }

func key(m time.Month, year int) int {
	return year*12 + int(m) - 1
}

// parseMonth accepts English month names, three-letter abbreviations and 1..12.
func parseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return time.Month(n), nil
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}
