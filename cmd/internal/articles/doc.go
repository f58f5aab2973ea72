// Package articles owns article content: CRUD with owner-guarded mutation,
// favorites, tags, comments, and the list/feed queries.
//
// Mutations on owned resources (update/delete article, delete comment) are
// issued as single guarded statements and classified through the ownership
// package; this package never performs a separate existence check before a
// write.
package articles
