// Package openapi exposes the public contracts for the loader and parser
// stages along with the typed, order-preserving contract model they produce.
// Implementations live under internal/openapi so yaml.v3 node handling stays
// hidden from consumers.
package openapi
