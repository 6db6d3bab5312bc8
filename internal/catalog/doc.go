// Package catalog is the SDK root: one method per catalog operation, all running through the
// [api.Pipeline] with a shared [auth.Manager] for the user scoped endpoints.
//
// Most methods return an [api.ListResponse] or [api.ItemResponse]; callers check Error.
// [Client.CheckAvailability] and [Client.Mix] return the failure directly instead.
package catalog
