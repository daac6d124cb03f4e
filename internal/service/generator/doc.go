// Package generator writes a fresh, empty mod list manifest.
package generator
