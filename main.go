package main

import (
	"context"
	"os"

	"github.com/yaklabco/cargotask/cmd/cargotask"
	"github.com/yaklabco/cargotask/pkg/task"
)

func main() {
	os.Exit(actualMain())
}

func actualMain() int {
	ctx := context.Background()

	rootCmd := cargotask.NewRootCmd(ctx)

	// fang prints the error; only the exit status is left to decide.
	return task.ExitStatus(cargotask.ExecuteWithFang(ctx, rootCmd))
}
