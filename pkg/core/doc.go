// Package core defines the shared language of the leapviz system.
//
// This package contains:
//   - Domain entities (Dataset, Column, Row)
//   - Request and result shapes exchanged with the engine
//   - Service interfaces (RowStore, UnitOfWork)
//   - Error kinds shared by every layer
//   - Source adapter configuration (AdapterConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
