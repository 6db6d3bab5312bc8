// Package models defines the catalog entities returned by the music service and the converters that decode them.
//
// The package contains two categories of types:
//
// 1. Catalog entities: decoded from service payloads
//   - [Artist] : performers, with genres, thumbnails and origin
//   - [Product] : albums, singles and tracks
//   - [Genre] : catalog genres used by chart and release filters
//   - [MixGroup] / [Mix] : curated radio mixes and the groups that hold them
//   - [SearchResult] : a mixed search hit (artist or product)
//   - [PlayEvent] : one entry of a user's play history
//
// 2. Enumerations: [Category], [OrderBy] and [SortOrder] with the query values the service expects.
//
// Every entity has a converter (ArtistFromJSON, ProductFromJSON, ...) matching the pipeline's converter contract:
// given one JSON node, return the entity and whether it is usable. Nodes without an id are rejected.
package models
