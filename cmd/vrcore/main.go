// vrcore evaluates flood-defense reinforcement programs: system failure
// probability curves, greedy optimizer traces, risk-based priorities and
// calendar program curves.
//
// Usage:
//
//	vrcore import <file.yaml|file.json>
//	vrcore list
//	vrcore delete   <traject>
//	vrcore system   --traject=<name> [--section=<name>] [--strategy=vr|dsn] [--reinforced]
//	vrcore greedy   --traject=<name> [--criterion=none|economic_optimum|target_reliability] [--compare]
//	vrcore priority --traject=<name> [--strategy=vr|dsn]
//	vrcore program  [--strategy=vr|dsn]
//	vrcore runs     [--limit=20]
//	vrcore serve    [--addr=host:port] [--metrics-addr=host:port]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
