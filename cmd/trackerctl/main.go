package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/issuetracker/internal/trackerctl"
)

func main() {
	if err := trackerctl.NewRootCommand(os.Stderr).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
