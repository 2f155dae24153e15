package main

import (
	stderrors "errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !stderrors.Is(err, errInvalidTimecode) {
			fmt.Fprintln(os.Stderr, renderError(err))
		}
		os.Exit(1)
	}
}
