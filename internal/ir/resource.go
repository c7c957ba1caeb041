package ir

import "fmt"

// DeletedKey marks a resource for removal in bulk operations.
const DeletedKey = "_deleted"

// IDKey is the payload key mirrored into the id column.
const IDKey = "id"

// Resource is a stored document. The id key is mirrored into the id column
// and the whole map is serialized into the payload column.
type Resource map[string]any

// ID returns the resource id and whether it is present and non-nil.
func (r Resource) ID() (any, bool) {
	if r == nil {
		return nil, false
	}
	id, ok := r[IDKey]
	if !ok || id == nil {
		return nil, false
	}
	if s, isString := id.(string); isString && s == "" {
		return nil, false
	}
	return id, true
}

// Deleted reports whether the resource carries a truthy deletion marker.
func (r Resource) Deleted() bool {
	v, ok := r[DeletedKey]
	if !ok {
		return false
	}
	return Truthy(v)
}

// Field returns the normalized value of an indexed field, or nil when the
// field is absent. Missing fields bind as NULL.
func (r Resource) Field(name string) any {
	v, ok := r[name]
	if !ok {
		return nil
	}
	return Normalize(v)
}

// Truthy follows loose JSON truthiness: false, 0, "", and nil are false.
func Truthy(v any) bool {
	switch val := Normalize(v).(type) {
	case nil:
		return false
	case string:
		return val != ""
	default:
		if f, ok := toFloat(val); ok {
			return f != 0
		}
		return true
	}
}

// String renders the resource id for log and error messages.
func (r Resource) String() string {
	id, ok := r.ID()
	if !ok {
		return "<resource without id>"
	}
	return fmt.Sprintf("resource(%v)", id)
}
