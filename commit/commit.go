// Package commit contains the classification and grouping engine: it assigns
// each commit a changelog category and partitions classified commits into
// release groups.
package commit

import (
	"fmt"
	"strings"
)

// Category is a changelog section. The order of the constants is the order
// categories are displayed in.
type Category int

const (
	_ Category = iota

	Added
	Changed
	Deprecated
	Removed
	Fixed
	Security
	Documentation
	Testing
	Build
	Other
)

var categories = []Category{
	Added,
	Changed,
	Deprecated,
	Removed,
	Fixed,
	Security,
	Documentation,
	Testing,
	Build,
	Other,
}

// Categories returns every category in display order.
func Categories() []Category {
	res := make([]Category, len(categories))
	copy(res, categories)
	return res
}

func (c Category) String() string {
	switch c {
	case Added:
		return "Added"
	case Changed:
		return "Changed"
	case Deprecated:
		return "Deprecated"
	case Removed:
		return "Removed"
	case Fixed:
		return "Fixed"
	case Security:
		return "Security"
	case Documentation:
		return "Documentation"
	case Testing:
		return "Testing"
	case Build:
		return "Build"
	case Other:
		return "Other"
	case 0:
		return "<INVALID>"
	default:
		return "<UNKNOWN>"
	}
}

func (c Category) Valid() bool {
	return c >= Added && c <= Other
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("commit: invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	cat, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = cat
	return nil
}

// ParseCategory returns the category named s, ignoring case.
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("commit: unknown category %q", s)
}
