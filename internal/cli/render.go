package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kvasir-media/clipstream/internal/notify"
)

// renderEvents subscribes to the hub and prints toasts plus a single-line
// progress bar to stderr. The returned stop function unsubscribes and
// waits for the renderer to drain.
func renderEvents(hub *notify.Hub) func() {
	events, unsub := hub.Subscribe()

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)

	go func() {
		defer wg.Done()
		inProgress := false
		for {
			select {
			case ev := <-events:
				switch ev.Kind {
				case notify.KindProgress:
					fmt.Fprintf(os.Stderr, "\r%s %3d%%", progressBar(ev.Percent), ev.Percent)
					inProgress = ev.Percent < 100
					if !inProgress {
						fmt.Fprintln(os.Stderr)
					}
				default:
					if inProgress {
						fmt.Fprintln(os.Stderr)
						inProgress = false
					}
					fmt.Fprintf(os.Stderr, "%s %s\n", prefixFor(ev.Kind), ev.Message)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
		unsub()
	}
}

func prefixFor(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return "ok:"
	case notify.KindError:
		return "error:"
	default:
		return "info:"
	}
}

func progressBar(pct int) string {
	const width = 30
	filled := pct * width / 100
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}
