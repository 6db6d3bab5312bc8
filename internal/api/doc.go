// Package api implements the request/response pipeline shared by every catalog operation.
//
// # Commands
//
// A [Command] describes one operation: its [Descriptor] (method, territory rules, secure or
// plain base URL), its path, its query filters, an optional body, and how a success payload is
// decoded. Most operations are values of [ListCommand] or [ItemCommand] parameterised with a
// path function, a query function and a [Converter].
//
// # Execution
//
// [Execute] and [ExecuteList] run a command through a [Pipeline]:
//
//  1. path and query are built (argument validation happens here)
//  2. secured commands obtain a bearer token from the [Authorizer]
//  3. [BuildURI] assembles the absolute URI
//  4. the [Dispatcher] performs the HTTP call
//  5. decodable responses go to [DecodeList] / [DecodeItem], everything else to [Classify]
//
// There is no retry. Cancellation is honoured up to the dispatch step.
//
// # Errors
//
// Service and transport failures are values in [Response.Error], always an [*Error] whose Kind
// is one of the package sentinels:
//   - [ErrAPINotAvailable] : 404 while the territory was inferred from the locale
//   - [ErrInvalidCredentials] : 401 or 403
//   - [ErrNetworkLimited] : the identity header was missing
//   - [ErrNetworkUnavailable] : the dispatcher could not reach the service
//   - [ErrAPICallFailed] : anything else
//
// Argument and URI failures ([ErrInvalidArgument], [ErrCredentialsRequired],
// [ErrCountryCodeRequired]) are returned as the Go error before any network call.
package api
