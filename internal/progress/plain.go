package progress

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Plain renders updates for non-interactive output: one aggregate byte
// bar plus a line for each track that ends.
type Plain struct {
	out  io.Writer
	bar  *progressbar.ProgressBar
	last map[int]int64
	max  int64
}

// NewPlain creates a renderer writing to out.
func NewPlain(out io.Writer) *Plain {
	bar := progressbar.NewOptions64(0,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	return &Plain{out: out, bar: bar, last: make(map[int]int64)}
}

// Run consumes updates until the channel is closed.
func (p *Plain) Run(updates <-chan Update) {
	for u := range updates {
		p.handle(u)
	}
	_ = p.bar.Finish()
}

func (p *Plain) handle(u Update) {
	switch u.Kind {
	case Created:
		p.max += u.Total
		p.bar.ChangeMax64(max(p.max, 1))

	case Position:
		delta := u.Position - p.last[u.ID]
		p.last[u.ID] = u.Position
		if u.Position > u.Total && u.Total > 0 {
			// deliveries may exceed the estimate
			p.max += delta
			p.bar.ChangeMax64(p.max)
		}
		_ = p.bar.Add64(delta)

	case Message:
		p.bar.Describe(u.Name + ": " + u.Message)

	case Finished, Failed, Skipped:
		_ = p.bar.Clear()
		fmt.Fprintf(p.out, "%s %s: %s\n", marker(u.Kind), u.Name, u.Message)
		p.bar.Describe("downloading")
	}
}

func marker(k Kind) string {
	switch k {
	case Finished:
		return "✓"
	case Failed:
		return "✗"
	default:
		return "-"
	}
}
