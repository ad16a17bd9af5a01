// Command focus-alarmctl controls a running focus-bridge daemon.
package main

import "github.com/oshokin/focus-alarm/cmd/focus-alarmctl/cmd"

func main() {
	cmd.Execute()
}
