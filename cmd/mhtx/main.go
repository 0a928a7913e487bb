package main

import (
	"errors"
	"os"

	"github.com/webarc/mhtx/internal/errdefs"
	"github.com/webarc/mhtx/internal/log"
)

var Version = "dev"

func init() {
	// Add flags
	unpackCmd.Flags().StringP("output", "o", "", "Output path (single archive only)")
	unpackCmd.Flags().BoolP("files", "f", false, "Unpack assets into blob files next to the output instead of inlining")

	// Add commands to root
	rootCmd.AddCommand(versionCmd, unpackCmd, bootstrapCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ce *errdefs.CustomError
		if errors.As(err, &ce) && ce.Code > 0 {
			log.Error(ce.Message)
			os.Exit(ce.Code)
		}
		log.Fatal(err)
	}
}
