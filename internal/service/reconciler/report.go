package reconciler

import (
	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
)

// Outcome is the terminal state of one tracked mod after a pass.
type Outcome string

const (
	// OutcomeUnchanged means the installed version is the newest compatible one,
	// or no compatible release exists.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeApplied means the new jar was installed and the record updated.
	OutcomeApplied Outcome = "applied"
	// OutcomeSkipped means an update was found but not confirmed.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnsupported means the mod's platform cannot be queried.
	OutcomeUnsupported Outcome = "unsupported"
	// OutcomeLookupFailed means the catalog could not be queried for this mod.
	OutcomeLookupFailed Outcome = "lookup_failed"
	// OutcomeFailed means replacing the jar failed; the record is untouched.
	OutcomeFailed Outcome = "failed"
)

// ItemResult is the per-mod part of a Report.
type ItemResult struct {
	// ID is the catalog identifier of the mod.
	ID string
	// Platform is the normalized platform tag.
	Platform domain.Platform
	// From is the version recorded before the pass.
	From string
	// To is the candidate version, empty when no update was found.
	To string
	// Outcome is the terminal state.
	Outcome Outcome
	// Err explains degraded outcomes.
	Err error
}

// Report summarizes a reconciliation pass.
type Report struct {
	// TargetVersion is the Minecraft version the pass resolved against.
	TargetVersion string
	// VersionChanged is true when an override replaced the stored target version.
	VersionChanged bool
	// Items holds one entry per processed mod, in manifest order.
	Items []ItemResult
}

// Changed reports whether the manifest must be written back.
func (r *Report) Changed() bool {
	return r.VersionChanged || r.Count(OutcomeApplied) > 0
}

// Count returns how many mods ended in outcome.
func (r *Report) Count(outcome Outcome) int {
	count := 0

	for i := range r.Items {
		if r.Items[i].Outcome == outcome {
			count++
		}
	}

	return count
}

// Item returns the result for the mod with the given id.
func (r *Report) Item(id string) (ItemResult, bool) {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return r.Items[i], true
		}
	}

	return ItemResult{}, false
}
