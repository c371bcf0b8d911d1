// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/crateprobe/crateprobe/cmd/crateprobe"

func main() {
	cmd.Execute()
}
