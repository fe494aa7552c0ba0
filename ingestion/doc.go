// Package ingestion turns documents into stored chunks.
//
// A Pipeline extracts plain text from a document, splits it into
// overlapping character windows with a Chunker, embeds the windows in
// batches on a worker pool, and appends the result to a storage.ChunkStore
// as a single atomic batch.
//
// Embedding calls are retried with exponential backoff. Several documents
// can be ingested concurrently with IngestDocuments; the first failure
// cancels the remaining work.
package ingestion
