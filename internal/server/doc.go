// Package server runs the loopback HTTP endpoint that completes the authorization code flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [Middleware] wraps
// handlers in reverse order (last added executes first). [BasicRouter] uses [http.ServeMux]
// method patterns, so a request with the wrong method gets a 405 from the mux itself.
//
// # Callback Handler
//
// [CallbackHandler] receives the redirect from the authorize page. It checks the state value,
// hands the code to an [Exchanger] (normally the token manager's Acquire) and reports exactly
// one [CallbackResult]. Any later hit is rejected so a replayed redirect cannot exchange twice.
//
// # Callback Server
//
// [AwaitCallback] binds the redirect address, serves until a result arrives or ctx ends, then
// shuts the listener down.
package server
