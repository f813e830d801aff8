// main is the entry point of the annofabcli command line tool.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/huangsam/annofabcli/cmd"
	"github.com/huangsam/annofabcli/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
