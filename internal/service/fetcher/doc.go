// Package fetcher replaces a mod jar on disk: it removes the superseded file,
// downloads the new release and applies it with go-update, verifying the
// catalog's sha512 digest when one is published.
package fetcher
