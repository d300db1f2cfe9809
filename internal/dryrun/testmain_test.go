package dryrun

import (
	"flag"
	"fmt"
	"os"
	"testing"
)

var printIsRequested bool

func init() {
	flag.BoolVar(&printIsRequested, "printIsRequested", false, "")
}

func TestMain(m *testing.M) {
	flag.Parse()
	if printIsRequested {
		fmt.Println(IsRequested()) //nolint:forbidigo // helper process output
		return
	}
	os.Exit(m.Run())
}
