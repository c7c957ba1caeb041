package queryir

import (
	"fmt"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be interpolated into SQL as a
// table or column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// ValidateIdentifiers returns an error naming the first invalid identifier.
// kind labels the identifiers in the error message ("table", "column", ...).
func ValidateIdentifiers(kind string, names ...string) error {
	for _, name := range names {
		if !ValidIdentifier(name) {
			return fmt.Errorf("invalid %s name %q", kind, name)
		}
	}
	return nil
}

// ValidateSort checks that every sort key is a valid identifier.
func ValidateSort(sort []SortKey) error {
	for _, s := range sort {
		if err := ValidateIdentifiers("sort key", s.Key); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePagination rejects negative limits and offsets.
func ValidatePagination(p Pagination) error {
	if p.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", p.Limit)
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset must not be negative: %d", p.Offset)
	}
	return nil
}
