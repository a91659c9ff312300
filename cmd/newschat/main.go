package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "newschat"}

	root.AddCommand(serveCMD(), ingestCMD())
	_ = root.Execute()
}
