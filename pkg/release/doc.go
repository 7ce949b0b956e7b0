// Package release computes and applies release tags across a repository
// and its submodules.
//
// A release is applied in three phases. The version string is validated
// once. Every repository in scope then has its tag name resolved from its
// own prefix and checked for collisions; any failure aborts before a single
// tag is written. Finally tags are created one repository at a time in
// depth-first submodule declaration order. A failure in that last phase is
// reported with the exact prefix of repositories already tagged and is
// never rolled back.
//
// Repositories are reached through the Handle interface; package gotrepo
// adapts on-disk got repositories and package releasetest provides an
// in-memory double.
package release
