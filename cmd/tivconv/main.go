package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/tiv/pkg/raster"
	"github.com/Fepozopo/tiv/pkg/term"
	"github.com/Fepozopo/tiv/pkg/update"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: tivconv [flags] in [out]\n\n")
	fmt.Fprintf(out, "Decodes in (pnm, png, jpeg, gif, bmp, tiff, webp) and writes it in\n")
	fmt.Fprintf(out, "the format out's extension names. With no out, shows the image inline\n")
	fmt.Fprintf(out, "when the terminal can display images.\n\n")
	flag.PrintDefaults()
}

func main() {
	quality := flag.Int("quality", 92, "jpeg output quality")
	show := flag.Bool("show", false, "preview the result inline even when writing a file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("tivconv", update.Version)
		return
	}
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	img, err := raster.DecodeFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "tivconv:", err)
		os.Exit(1)
	}

	if flag.NArg() < 2 {
		if !term.Supported() {
			fmt.Fprintln(os.Stderr, "tivconv: terminal can't show images and no output file was named")
			os.Exit(1)
		}
		if err := term.Show(img, "png"); err != nil {
			fmt.Fprintln(os.Stderr, "tivconv:", err)
			os.Exit(1)
		}
		return
	}

	out := flag.Arg(1)
	if err := raster.SaveQuality(out, img, *quality); err != nil {
		fmt.Fprintln(os.Stderr, "tivconv:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", out)

	if *show && term.Supported() {
		format := strings.TrimPrefix(filepath.Ext(out), ".")
		if err := term.Show(img, format); err != nil {
			fmt.Fprintln(os.Stderr, "tivconv:", err)
		}
	}
}
