// Package metadata implements the normalized movie and television records
// produced by providers.
//
// A record holds a fixed, per-media set of fields. Field names are
// case-insensitive, values are validated on assignment and empty values are
// treated as unset. Records render into human-readable labels through a small
// template language:
//
//	{field}        substitute the field, blank when unset
//	{field:02}     substitute a numeric field zero-padded to two digits
//	<... {field}>  optional segment, dropped entirely when any field inside is unset
//
// After substitution a cleanup pass collapses repeated dashes and whitespace
// and removes empty bracket pairs.
package metadata
