// package repositories provides the persistence layer for all model types.
//
// Each repository wraps hand-written SQL over a shared *sql.DB: users and
// settings as plain rows, words as an idempotent per-user aggregate keyed by
// the case-folded word, vocabulary lists as append-only JSON snapshots, and
// watch history as a plain event log. Sequence generation and soft deletes
// follow the same conventions everywhere they apply.
package repositories

// Repository table names used for sequence generation.
const (
	usersTable   = "users"
	wordsTable   = "words"
	listsTable   = "vocabulary_lists"
	historyTable = "watch_history"
)
