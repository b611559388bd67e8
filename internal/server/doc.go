// Package server provides HTTP routing, middleware, and handlers for the
// vocabulary service API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Authentication
//
// Two flows share the same token machinery:
//
//   - The API flow: POST /api/auth/login exchanges a Google authorization code
//     for a signed bearer token via [LoginHandler].
//   - The CLI flow: [OAuthHandler] runs a temporary localhost callback server
//     during interactive login and hands the OAuth token back over a channel.
//
// [TokenIssuer] signs and verifies the service's own HS256 bearer tokens.
// [AuthMiddleware] validates them and stores the user ID in the request
// context, retrievable with [UserIDFrom].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
