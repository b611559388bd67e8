// Package vocab implements the AI-assisted vocabulary extraction pipeline.
//
// The pipeline turns raw lyrics text into a list of [models.VocabularyEntry]
// values through three stages, each a fallback for the previous:
//
//  1. Free text: [BuildPrompt] renders a deterministic instruction set, the
//     model streams a completion, and [Parse] recovers a structured entry list
//     from the unconstrained output.
//  2. Structured output: on any stage-1 failure the same prompt is re-sent
//     with an explicit JSON schema constraint.
//  3. Local fallback: on any stage-2 failure [Fallback] tokenizes the lyrics
//     deterministically. This stage cannot fail.
//
// [Extractor.Extract] sequences the stages. The only terminal error is a
// missing model credential (shared.ErrModelNotConfigured), checked before any
// attempt; every other failure degrades quality instead of surfacing.
//
// [ResolveOptions] maps persisted user settings (or their absence) to a valid
// [models.VocabularyOptions], coercing invalid fields to defaults. It never
// fails.
package vocab
