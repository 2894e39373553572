// Command hexfront runs two-player hex strategy matches: headless
// simulations, a paced spectator server, and map previews.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
