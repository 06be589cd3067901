// Command plusdbd runs the storage engine as a standalone server, and
// provides one-shot CLI operations against a store without starting the
// HTTP surface.
package main

import "plusdb/cmd/plusdbd/cmd"

func main() {
	cmd.Execute()
}
