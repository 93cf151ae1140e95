package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kilianp07/loadshift/cmd"
	"github.com/kilianp07/loadshift/core/monitoring"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			monitoring.Recover(r)
			monitoring.Flush(2 * time.Second)
			panic(r)
		}
	}()
	if err := cmd.Execute(); err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "cli"})
		monitoring.Flush(2 * time.Second)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
