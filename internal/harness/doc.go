// Package harness provides conformance testing for document tables.
//
// The harness binds a table in a fresh in-memory database, seeds it, runs a
// sequence of operations, and records every statement each operation sends
// to the engine. Traces are compared against golden files so a change in
// generated SQL is always a visible diff.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	table:
//	  name: users
//	  indexed_fields: [city, age]
//	  params_limit: 3
//	  chunk_size: 2
//	seed:
//	  - { id: u1, city: NYC, age: 30 }
//	steps:
//	  - op: query
//	    where: { city: NYC }
//	    like: { name: al }
//	    range: { key: age, from: 1, to: 5 }
//	    sort: [{ key: age, desc: true }]
//	    limit: 10
//	    expect_ids: [u1]
//	  - op: get
//	    id: missing
//	    expect_error: not_found
//
// Where keys compile in document order. Like values become substring
// patterns. Range expands to an integer array, which is how scenarios
// exercise scratch-table overflow without listing every value.
//
// # Deterministic Testing
//
// Unique scratch tables are named from a fixed sequence (s1, s2, ...)
// rather than UUIDs, so traces are identical across runs. Seed statements
// are not traced.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/overflow.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
