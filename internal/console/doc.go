// Package console holds the user-facing side of a reconciliation pass:
// announcing version transitions, asking for confirmation and reading
// free-form answers. Terminal talks to a person; Auto confirms everything
// and is used by --yes and by tests.
package console
