// Package errors provides structured error types for the ldscript module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: element path, descriptor position, the
// offending value, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindInvalidInput).
//		Path("MemoryRegions", "flash", "size").
//		At(errors.Position{File: "layout.yaml", Line: 4, Column: 11}).
//		Detail("unknown size unit %q", "GB").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OverlappingRegion("ram2", "ram")
//	err := errors.FieldUnknown(errors.PhaseParse, path, "adress")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
