// Package modrinth is a minimal read-only client for the Modrinth v2 REST API.
//
// Only the project version listing is implemented; it is all the resolver
// needs to find the newest release compatible with a game version and loader set.
package modrinth
