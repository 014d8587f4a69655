// Package suite loads declarative expectation files and turns them into
// contract checks.
//
// A suite names the contract it validates (relative to the suite file) and
// lists path, ordering, operation, schema and parity expectations:
//
//	name: lifecycle read API
//	contract: ../contracts/lifecycle.yaml
//	integrity: true
//	structure: true
//	paths:
//	  - path: /v2/node/{nodeID}/lifecycle-state
//	    methods: [get]
//	operations:
//	  - path: /v2/node/{nodeID}/lifecycle-state
//	    method: get
//	    responses:
//	      - status: "404"
//	        descriptionContains: not found
//	        noContent: true
//
// YAML and JSON are both accepted.
package suite
