// Package benchmarks compares saber with other Go dependency injection
// libraries.
//
// Run benchmarks with: go test -bench=. -benchmem ./benchmarks/
package benchmarks
