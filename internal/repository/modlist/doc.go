// Package modlist implements persistence for the mod list manifest.
//
// The FileRepository loads the manifest from JSON, and on save keeps the
// previous file as a byte-identical "old_" backup next to the new one.
// Keys the program does not interpret are carried through unchanged.
package modlist
