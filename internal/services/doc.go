// Package services defines the [Provider] contract for music streaming services
// and implements it for Spotify, Deezer, Tidal, and YouTube Music.
//
// # Provider contract
//
// Every provider reads a playlist into the canonical [models.Document] and
// writes a document back out, batching the destination submission:
//
//	ReadPlaylist(ctx, playlistID, opts)  -> *models.Document
//	WritePlaylist(ctx, document, opts)   -> *models.WriteResult
//
// Providers are selected at runtime through the [Registry], keyed by name —
// never by type. The [Factory] constructs a provider bound to a bearer token,
// sharing the per-provider circuit breaker across every job.
//
// # Catalog search
//
// Providers whose API exposes track search additionally implement
// [CatalogSearcher], which the orchestrator uses to feed the matching resolver
// with destination-side candidates.
//
// # Batched writes
//
// [WriteBatches] splits destination track ids into fixed-size chunks submitted
// strictly in order. Tracks without a destination id are skipped and counted,
// never submitted; a chunk that exhausts the transport's retries aborts the
// remaining chunks.
//
// # Error handling
//
// All network failures surface through the transport package's taxonomy:
// [transport.RateLimitError], [transport.CircuitOpenError],
// [transport.StatusError], each unwrapping to a shared sentinel.
package services
