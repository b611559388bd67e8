// Package services implements clients for the external collaborators of the
// vocabulary pipeline.
//
// Two interfaces are defined:
//
//   - [LyricsService] : song search, metadata and lyrics page scraping
//     ([GeniusService])
//   - [ModelService] : the extraction language model, offering a streaming
//     free-text completion and a schema-constrained completion
//     ([OpenAIService])
//
// Both clients are plain HTTP consumers: all methods take a context.Context
// and respect the caller's cancellation; neither client retries or caches.
// The pipeline in internal/vocab and internal/tasks depends only on the
// interfaces, so tests substitute in-memory fakes.
package services
