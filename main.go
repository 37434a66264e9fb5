// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/shakebench/shakebench/cmd/shakebench"

func main() {
	cmd.Execute()
}
