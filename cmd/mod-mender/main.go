// Command mod-mender keeps the mods of a Minecraft mod list up to date.
package main

import "github.com/oshokin/mod-mender/cmd/mod-mender/cmd"

func main() {
	cmd.Execute()
}
