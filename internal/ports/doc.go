// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Genome]: per-record lengths and exact substring search over a genome
//   - [PrimerRepository]: the primer catalog
//   - [LocationRepository]: append-only binding sites
//   - [CommandRunner]: external counter and enumerator processes
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with FASTA
// files, a SQLite catalog through gorm, and os/exec.
package ports
