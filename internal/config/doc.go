// Package config loads docstore configuration from YAML or CUE.
//
// Example (YAML):
//
//	database:
//	  driver: sqlite3
//	  path: ./docs.db
//	tables:
//	  - name: users
//	    indexed_fields: [city, age]
//	query:
//	  params_limit: 100
//	  chunk_size: 300
//	log:
//	  level: info
//	  format: text
//
// The same document in CUE is checked against the #Config schema in
// schema.cue before decoding.
package config
