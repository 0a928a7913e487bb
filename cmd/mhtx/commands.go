package main

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/webarc/mhtx/internal/bootstrap"
	"github.com/webarc/mhtx/internal/compress"
	"github.com/webarc/mhtx/internal/config"
	"github.com/webarc/mhtx/internal/log"
	"github.com/webarc/mhtx/internal/mht"
	"github.com/webarc/mhtx/internal/render"
)

var rootCmd = &cobra.Command{
	Use:   "mhtx",
	Short: "MHTML web archive toolkit",
	Long: "mhtx unpacks MHTML web archives into HTML most browsers can handle,\n" +
		"either as a standalone file with assets inlined as data: URIs or as an\n" +
		"HTML file plus a directory of blob files.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mhtx %s\n", Version)
	},
}

var unpackCmd = &cobra.Command{
	Use:   "unpack <file>...",
	Short: "Unpack MHTML archives into browsable HTML",
	Long: "Unpack each archive to <file>.conv.html with referenced assets inlined\n" +
		"as data: URIs. With --files, assets are written as blob files next to\n" +
		"the output instead.",
	Args: cobra.MinimumNArgs(1),
	RunE: runUnpack,
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Install the Python libraries used by the post-processing helpers",
	Long: "Locate a pip executable on PATH, verify it targets Python 3, and install\n" +
		"the libraries the companion Python helpers depend on.",
	Args: cobra.NoArgs,
	RunE: runBootstrap,
}

func runUnpack(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	toFiles, _ := cmd.Flags().GetBool("files")

	if output != "" && len(args) > 1 {
		return fmt.Errorf("--output cannot be used with multiple archives")
	}

	cfg := config.Load()
	comp := compress.New(compress.Options{
		MaxDim:      cfg.MaxDim,
		JPEGQuality: cfg.JPEGQuality,
	})
	fs := afero.NewOsFs()

	failed := 0
	for _, path := range args {
		log.Info("unpacking", "archive", path)
		if err := unpackOne(fs, comp, path, output, toFiles); err != nil {
			log.Error("unpack failed", "archive", path, "err", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d archives failed", failed, len(args))
	}
	return nil
}

func unpackOne(fs afero.Fs, comp *compress.Compressor, path, output string, toFiles bool) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	arc, err := mht.Parse(bufio.NewReader(f))
	if err != nil {
		return err
	}

	if output == "" {
		output = outputPath(path)
	}

	var engine *render.Engine
	if toFiles {
		engine = render.NewFiles(arc, comp, fs, filepath.Dir(output))
	} else {
		engine = render.NewInline(arc, comp)
	}

	data, err := engine.Render()
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, output, data, 0o644); err != nil {
		return err
	}
	log.Info("wrote", "output", output)
	return nil
}

// outputPath derives the default output name: the input with its extension
// swapped for .conv.html.
func outputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".conv.html"
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	logChan := make(chan string, 64)
	done := make(chan struct{})
	go func() {
		for msg := range logChan {
			log.Info(msg)
		}
		close(done)
	}()

	b := bootstrap.NewBootstrapper(logChan)
	err := b.Run(cmd.Context())
	close(logChan)
	<-done
	return err
}
