// Package models defines the canonical playlist interchange types shared by every
// component of the migration pipeline.
//
// The package contains three categories of types:
//
// 1. Interchange values: the provider-agnostic document every importer produces and
// every exporter consumes
//   - [Document] : playlist metadata plus an ordered track list
//   - [Track] : a single recording with identity signals (ISRC, catalog ids, provider ids)
//
// 2. Matching values: inputs and outputs of the track resolver
//   - [Candidate] : a catalog entry under consideration for a source track
//   - [MatchResult] : the resolved identity with rule tag, confidence, and ranked candidates
//
// 3. Job values: migration bookkeeping
//   - [MigrationJob] : the queued → running → {succeeded, failed} state record
//   - [MatchReport] : quantified matching outcome, including unresolved tracks
//   - [WriteReport] / [WriteResult] : batched destination write accounting
//
// Documents and match results are treated as immutable once constructed; normalization
// returns a fresh copy rather than mutating in place.
package models
