// Package reconciler runs a reconciliation pass over a mod list manifest.
//
// For every tracked mod it asks the platform resolver for the newest
// compatible release, announces version transitions, asks for confirmation,
// replaces the jar and updates the manifest record. The manifest is written
// back, with a backup of the previous file, only if something changed.
package reconciler
