// Package resolver decides, per tracked mod, whether a newer compatible
// release exists on the mod's catalog.
//
// Each catalog is a PlatformResolver; the Registry picks one by platform tag
// and falls back to a resolver that reports "no change" for unknown tags.
// Lookup problems never abort a run: a resolver that cannot answer returns
// the current version together with an error the caller logs as a warning.
package resolver
