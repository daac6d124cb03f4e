// Package common holds helpers shared by several services.
//
// It detects a running game or launcher, which on some systems keeps mod
// jars locked while they are being replaced.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
