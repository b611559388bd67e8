// Package web implements an HTMX-based web application mirroring the TUI functionality.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app replicates the five-view TUI workflow using server-side rendering
// with HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. List Browser: Server-rendered table of saved vocabulary lists
//  2. Word View: HTMX partial swap showing a list's entries
//  3. Query Form: Song query input with hx-post trigger
//  4. Progress Monitor: SSE (Server-Sent Events) streaming pipeline progress
//  5. Results Display: Extracted words with scores, meanings, and synonyms
//
// Core Components
//
//   - HTTP Server: net/http server with html/template rendering
//   - Service Integration: Uses the same tasks.VocabEngine as the TUI
//   - Session Management: Cookie-based sessions carrying the bearer token
//   - SSE Handler: Streams real-time progress during extraction runs
//
// Routes
//
//	GET  /                       → List browser (requires auth)
//	GET  /auth/google            → OAuth initiation
//	GET  /auth/google/callback   → OAuth completion
//	GET  /lists/{id}             → HTMX partial: word view
//	POST /extract                → Start extraction, return SSE endpoint
//	GET  /extract/{id}/stream    → SSE progress stream
//	GET  /extract/{id}/result    → Final result view
//
// Templates
//
//   - base.html: Layout with navigation, auth status
//   - lists.html: Table with hx-get on rows
//   - words.html: Partial template for a list's entries
//   - progress.html: SSE consumer with phase display
//   - results.html: Extracted vocabulary breakdown
//
// # State Management
//
// Unlike the TUI's in-memory state, the web app persists state in:
//   - Session cookies: Bearer token, user ID
//   - vocabulary_lists rows: Snapshots shared with the API
//   - In-memory channels: SSE connections for active runs
//
// # Progress Streaming
//
// Extraction progress uses Server-Sent Events:
//  1. POST /extract starts a run, returns a run ID
//  2. Client opens SSE connection to /extract/{id}/stream
//  3. Handler launches goroutine running VocabEngine.Extract
//  4. Progress channel updates stream as SSE events
//  5. On completion, send "done" event with redirect URL
//
// Authentication Flow
//
//  1. User visits /, redirected to /auth/google if not authenticated
//  2. OAuth dance issues a bearer token stored in the session
//  3. Session middleware validates tokens on protected routes
//  4. Expired tokens trigger reauthorization flow
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server and SSE
//   - gorilla/sessions or similar: Cookie management
//
// Implementation Tasks
//
//  1. HTTP server setup with route registration
//  2. Template structure with HTMX integration
//  3. Session middleware for auth state
//  4. List browser handler backed by repositories.ListRepository
//  5. Word view handler (HTMX partial)
//  6. Extract endpoint starting a pipeline run
//  7. SSE handler streaming progress updates
//  8. Result handler displaying the run outcome
//  9. OAuth handlers wrapping the existing Google login
//  10. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Mock services.LyricsService and services.ModelService
//   - Validate HTMX headers and response structure
//   - Test SSE stream formatting
package web
