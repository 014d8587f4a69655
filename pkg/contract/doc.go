// Package contract evaluates declarative expectations against a parsed
// contract document. Every expectation produces independent results; a
// failing assertion never stops the others, and only a load failure aborts a
// run before checks execute.
package contract
