// Package provider turns the raw endpoint functions into high-level metadata
// searches.
//
// A Provider owns the credentials for one remote service and exposes a
// single Search operation. Search picks a strategy from the supplied
// Criteria, in order of precedence:
//
//  1. the provider's own id (IDTmdb, IDTvdb)
//  2. a cross-reference IMDb id
//  3. a series name combined with an air date (TVDb only)
//  4. a title or series text query
//
// Results are produced lazily as an iter.Seq2. Each page or candidate is
// fetched only when the consumer asks for more, duplicate records are
// dropped and the sequence ends with a single (nil, err) pair when the search
// fails. A search that yields nothing ends with an error matching
// services.ErrNotFound.
//
// The registry maps provider names to constructors so callers can select a
// service by name at runtime.
package provider
