// Package progress renders per-file transfer bars on a shared mpb
// container.
package progress

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type Progress struct {
	mu       sync.Mutex
	progress *mpb.Progress
}

func New() *Progress {
	return &Progress{
		progress: mpb.New(),
	}
}

// NewBar adds a byte-counting bar labelled text.
func (p *Progress) NewBar(n int64, text string) *mpb.Bar {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.progress.AddBar(n,
		mpb.PrependDecorators(
			decor.Name(text, decor.WC{W: 12, C: decor.DindentRight}),
			decor.CountersKibiByte(" % .2f / % .2f", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Elapsed(1, decor.WC{W: 12, C: decor.DindentRight}),
		),
	)
}

// Execute copies n bytes from src to dst, advancing bar as they move.
func (p *Progress) Execute(dst io.Writer, src io.Reader, n int64, bar *mpb.Bar) (int64, error) {
	proxy := bar.ProxyReader(src)
	defer proxy.Close()

	return io.CopyN(dst, proxy, n)
}

// Wait blocks until every bar has completed or aborted.
func (p *Progress) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.progress.Wait()
}

// Reset drains the container and replaces it, ready for a new round
// of bars.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.progress != nil {
		p.progress.Wait()
	}

	p.progress = mpb.New()
}
