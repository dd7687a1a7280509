// tb-fingerprint captures a platform fingerprint of a Linux host.
//
// Usage:
//
//	tb-fingerprint                                  # local host, JSON in the current directory
//	tb-fingerprint --output /tmp/fp.json            # explicit output file
//	tb-fingerprint --format yaml --output-dir /srv  # YAML with a generated name
//	tb-fingerprint --mode-k8s                       # K8s DaemonSet mode (nsenter)
//	tb-fingerprint --ssh root@node1                 # remote host over SSH
package main

import "github.com/tinkerbelle-io/tb-fingerprint/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
