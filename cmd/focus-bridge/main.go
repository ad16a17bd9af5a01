// Command focus-bridge runs the focus timer alarm bridge daemon.
package main

import "github.com/oshokin/focus-alarm/cmd/focus-bridge/cmd"

func main() {
	cmd.Execute()
}
