// Package tasks orchestrates the vocabulary extraction pipeline with
// real-time progress reporting.
//
// # Core Operation
//
// [VocabEngine.Extract] runs the full pipeline for one query:
//
//  1. Resolve the query against the lyrics catalog (first hit wins)
//  2. Fetch and extract the song's plain-text lyrics
//  3. Resolve the user's extraction settings to a concrete policy
//  4. Run the extraction model over the lyrics
//  5. Persist the result: word aggregates, a list snapshot, a watch event
//
// A query with no catalog hits fails before any model or persistence call.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default to
// prevent blocking.
//
// # Implementation
//
// [VocabEngine] depends on:
//   - [services.LyricsService] : the lyrics catalog client
//   - [Extractor] : the model-backed extraction stage (vocab.Extractor)
//   - [SettingsStore], [WordStore], [ListStore], [HistoryStore] : persistence
package tasks
