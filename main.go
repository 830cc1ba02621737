// chatwidget serves a markdown chat widget and its backend.
package main

import (
	"fmt"
	"os"

	"github.com/linanwx/chatwidget/cmd"
	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if err := cmd.InitLogger(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
	}
	err = cmd.Execute()
	if cerr := logger.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "logger close error:", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
