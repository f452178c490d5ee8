// Command advent runs the day-selectable puzzle engine.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
