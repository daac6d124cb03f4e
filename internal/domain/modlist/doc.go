// Package modlist holds the domain model of a mod list manifest: the target
// Minecraft version, the loader set and the tracked mods.
package modlist
