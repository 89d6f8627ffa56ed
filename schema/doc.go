// Package schema provides the CUE schema and Go types for forge-sync project
// configuration files, and the schema version used to check compatibility of
// configurations and persisted equivalence databases.
//
// The config package unifies user files with ProjectCUE before decoding them
// into ProjectConfig.
package schema
