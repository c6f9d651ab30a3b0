// Package fact holds the per-pointer classification produced by the
// external inference engine.
//
// Every raw pointer in the analyzed program carries an opaque PointerID
// assigned by the front end. The inference engine computes, for each
// PointerID, a permission bitset (what operations the program actually
// performs through the pointer) and a flag bitset (extra markers such as
// CELL for pointers that need interior mutability). This package is the
// read-only view of that result: a Table indexed by PointerID.
//
// The rewrite core never computes facts itself; it only consumes them.
// A YAML loader is provided so fact tables can be described in fixtures
// and configuration files.
package fact
