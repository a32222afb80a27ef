// Package core defines the shared language of sqledit.
//
// This package contains:
//   - Domain snapshots (Table, Column, Row, ResultSet)
//   - The closed column type enumeration and its keyword table
//   - The unknown-type policy shared by every introspection path
//   - Error kinds returned by the gate and the accessor
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
