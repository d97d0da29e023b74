// Package config provides configuration management for lineage.
//
// Configuration lives in a single project-local directory, `.lineage` by
// default, which can be overridden with the --config-path flag:
//
//   - config.yaml (main configuration file)
//   - plans/ and activities/ (append-only entity logs written by the stores)
//
// Missing files are not an error. LoadConfig starts from GetDefaultConfig and
// overlays whatever config.yaml sets, so an empty project works out of the box.
//
// # Configuration File
//
//	stateDir: .lineage
//	provider: local
//	virtualLinks: true
//	logLevel: info
//	logFormat: text
//	status:
//	  watchDebounce: 500ms
//
// # Entity Storage System
//
// Storage provides generic YAML-based persistence for entities. Each entity
// type gets its own subdirectory and each entity its own file:
//
//	storage := config.NewStorageWithPath(".lineage")
//	err := storage.Save("plans", planID, data)
//	data, err := storage.Load("plans", planID)
//	ids, err := storage.List("plans")
//
// Filenames are sanitized for filesystem compatibility. Storage is safe for
// concurrent use within one process; serializing writers across processes is
// left to the caller.
//
// # Validation
//
// ValidationError and ValidationErrors collect structural problems in
// configuration and workflow files. The helpers (ValidateRequired,
// ValidateOneOf, ValidateEntityName, ...) return ValidationError values so that
// callers can either fail fast or accumulate them with ValidationErrors.Add.
package config
