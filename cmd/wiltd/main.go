package main

import (
	"flag"
	"fmt"
	"os"

	"wiltd/internal/di"
	"wiltd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log debug messages")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiltd: %s\n", err)
		os.Exit(1)
	}
}
