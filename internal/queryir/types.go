package queryir

// Statement is one SQL statement with its bound parameters.
// Params order matches the left-to-right order of ? placeholders in Query.
type Statement struct {
	Query  string
	Params []any
}

// Partitioned splits indexed filters by whether they fit in one statement.
//
// Self holds scalar, pattern, and array filters within the parameter
// budget; they are compiled into the main statement directly. Ext holds
// array filters longer than the budget; they are staged into scratch tables
// and joined through a subquery.
type Partitioned struct {
	Self *Filter
	Ext  *Filter
}

// SortKey orders results by one column.
type SortKey struct {
	Key  string `json:"key" yaml:"key"`
	Desc bool   `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// Pagination limits and offsets a result set. Zero values mean absent:
// an offset of 0 is never rendered.
type Pagination struct {
	Limit  int `json:"limit,omitempty" yaml:"limit,omitempty"`
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`
}
