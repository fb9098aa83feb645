// Package domain contains the core entities and errors of the primer
// selection pipeline.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (storage, subprocesses, logging)
// and contains only the data model and its invariants.
//
// # Entities
//
//   - [Primer]: a candidate primer sequence with foreground/background counts
//   - [PrimerLocation]: one exact binding site of a primer in a genome
//   - [PrimerSet]: a mutually compatible group of primers
//   - [SetQuality]: derived spacing metrics for a set, never stored
//   - [Stage]: a named step of the pipeline, used to tag failures
package domain
