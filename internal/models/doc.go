// Package models defines domain entities and persistence shapes for the lyra vocabulary service.
//
// The package contains two categories of types:
//
// 1. Extraction types, produced by the vocabulary pipeline and held in memory:
//   - [VocabularyEntry] : One extracted word candidate with gloss, example, synonyms and occurrence count
//   - [VocabularyOptions] : The extraction policy (language, level, limits)
//   - [Song] : Metadata for the resolved lyrics source
//
// 2. Persistent entities, backed by SQLite rows:
//   - [User] : Accounts created through Google OAuth login
//   - [UserSettings] : Per-user extraction policy overriding the defaults
//   - [Word] : Cumulative per-user word aggregate with synonym set
//   - [VocabularyList] : Append-only snapshot of one extraction result
//   - [WatchEntry] : One music-watch history record
//
// Extraction results are immutable once built; [VocabularyList.Entries] stores
// the full entry array as JSON so a snapshot reads back structurally equal to
// what was written.
package models
