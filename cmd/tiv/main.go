package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fepozopo/tiv/pkg/raster"
	"github.com/Fepozopo/tiv/pkg/term"
	"github.com/Fepozopo/tiv/pkg/update"
	"github.com/Fepozopo/tiv/pkg/viewer"
	"github.com/Fepozopo/tiv/pkg/watch"
)

const defaultPath = "out/latest.ppm"

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: tiv [flags] [path]\n\n")
	fmt.Fprintf(out, "Watches a raster image (default %s) and redraws on every write.\n", defaultPath)
	fmt.Fprintf(out, "Hover for pixel values; drag the level handles in the side panel.\n\n")
	flag.PrintDefaults()
}

func main() {
	bins := flag.Int("bins", 64, "histogram bins in the level panel")
	poll := flag.Duration("poll", 0, "poll the file at this interval instead of using the OS watcher")
	pick := flag.Bool("pick", false, "choose the file with fzf instead of naming it")
	showVersion := flag.Bool("version", false, "print the version and exit")
	doUpdate := flag.Bool("update", false, "check GitHub for a newer release")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println("tiv", update.Version)
		return
	}
	if *doUpdate {
		if err := update.Check(); err != nil {
			fmt.Fprintln(os.Stderr, "tiv:", err)
			os.Exit(1)
		}
		return
	}

	path := defaultPath
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if *pick {
		chosen, err := term.PickFile(".")
		if err != nil {
			fmt.Fprintln(os.Stderr, "tiv:", err)
			os.Exit(1)
		}
		path = chosen
	}

	st, err := raster.NewState(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tiv:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(viewer.New(st, *bins),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)

	w := newWatcher(path, *poll)
	defer w.Close()
	go func() {
		for range w.Changes() {
			p.Send(viewer.FileChangedMsg{})
		}
	}()
	go func() {
		for err := range w.Errs() {
			p.Send(viewer.WatchErrMsg{Err: err})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "tiv:", err)
		os.Exit(1)
	}
}

// newWatcher prefers the OS notification watcher and falls back to polling
// when it can't be set up, so live reload survives exhausted inotify
// watches and network filesystems.
func newWatcher(path string, poll time.Duration) *watch.Watcher {
	if poll > 0 {
		return watch.NewPolling(path, poll)
	}
	if w, err := watch.New(path); err == nil {
		return w
	}
	return watch.NewPolling(path, watch.DefaultPollInterval)
}
