// Package mcpserver exposes an Engine as Model Context Protocol tools over
// stdio: ingest_document, search_chunks and ask.
package mcpserver
