// Command sharedclustering runs shared-match closeness reports and
// clustering over a YAML file of DNA matches.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
