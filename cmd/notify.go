package cmd

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/SprintFox/Kitsunet-Share/core"
	"github.com/SprintFox/Kitsunet-Share/logger"
	"github.com/SprintFox/Kitsunet-Share/progress"
	"github.com/SprintFox/Kitsunet-Share/styles"
	"github.com/schollz/progressbar/v3"
	"github.com/vbauerster/mpb/v8"
)

// serveNotifier bridges protocol events to the serve terminal. Offers
// go to a channel the serve loop prompts on; inbound transfers render
// directly as bars.
type serveNotifier struct {
	offers chan core.BatchOffer
	log    logger.Logger

	// reject resolves an offer that could not be queued; onSaved runs
	// for every stored file. Both are wired after construction.
	reject  func(id string)
	onSaved func(path string)

	mu    sync.Mutex
	sizes map[string]uint64
	bars  map[string]*progressbar.ProgressBar
}

func newServeNotifier(log logger.Logger) *serveNotifier {
	return &serveNotifier{
		offers: make(chan core.BatchOffer, 10),
		log:    log,
		sizes:  make(map[string]uint64),
		bars:   make(map[string]*progressbar.ProgressBar),
	}
}

func (n *serveNotifier) PeersUpdated() {
	n.log.Debug("peer table changed")
}

func (n *serveNotifier) FileOffer(offer core.BatchOffer) {
	n.mu.Lock()
	for _, file := range offer.Files {
		n.sizes[file.Name] = file.Size
	}
	n.mu.Unlock()

	select {
	case n.offers <- offer:
	default:
		// The human is already drowning in prompts; answering for them
		// beats leaving the sender parked forever.
		n.log.WithStr("offer", offer.ID).Warn("offer queue full, rejecting")
		if n.reject != nil {
			n.reject(offer.ID)
		}
	}
}

func (n *serveNotifier) TransferProgress(p core.Progress) {
	if p.Direction != core.Inbound {
		return
	}

	n.mu.Lock()
	size := n.sizes[p.Subject]
	bar, ok := n.bars[p.Subject]
	if !ok {
		bar = DefaultBar(int64(size), fmt.Sprintf("receiving %s", p.Subject))
		n.bars[p.Subject] = bar
	}
	n.mu.Unlock()

	bar.Set64(int64(p.Percent / 100 * float64(size)))
}

func (n *serveNotifier) TransferComplete(c core.Completion) {
	if c.Direction != core.Inbound {
		return
	}

	n.mu.Lock()
	if bar, ok := n.bars[c.Subject]; ok {
		bar.Finish()
		delete(n.bars, c.Subject)
	}
	delete(n.sizes, c.Subject)
	n.mu.Unlock()

	fmt.Println(styles.SUCCESS.Render(fmt.Sprintf("saved %s", c.SavedPath)))

	if n.onSaved != nil {
		n.onSaved(c.SavedPath)
	}
}

// sendNotifier renders outbound transfers as one mpb bar per file and
// signals when the first byte moves, which is how the send command
// knows the recipient accepted.
type sendNotifier struct {
	started chan struct{}
	once    sync.Once

	tracker *progress.Progress

	mu    sync.Mutex
	sizes map[string]uint64
	bars  map[string]*mpb.Bar
}

func newSendNotifier(paths []string, batch core.Batch) *sendNotifier {
	n := &sendNotifier{
		started: make(chan struct{}),
		tracker: progress.New(),
		sizes:   make(map[string]uint64),
		bars:    make(map[string]*mpb.Bar),
	}

	for i, path := range paths {
		n.sizes[path] = batch[i].Size
	}

	return n
}

func (n *sendNotifier) PeersUpdated()             {}
func (n *sendNotifier) FileOffer(core.BatchOffer) {}

func (n *sendNotifier) TransferProgress(p core.Progress) {
	if p.Direction != core.Outbound {
		return
	}

	n.once.Do(func() { close(n.started) })

	size, bar := n.bar(p.Subject)
	bar.SetCurrent(int64(p.Percent / 100 * float64(size)))
}

func (n *sendNotifier) TransferComplete(c core.Completion) {
	if c.Direction != core.Outbound {
		return
	}

	n.once.Do(func() { close(n.started) })

	size, bar := n.bar(c.Subject)
	bar.SetTotal(int64(size), true)
}

func (n *sendNotifier) bar(subject string) (uint64, *mpb.Bar) {
	n.mu.Lock()
	defer n.mu.Unlock()

	size := n.sizes[subject]
	bar, ok := n.bars[subject]
	if !ok {
		bar = n.tracker.NewBar(int64(size), filepath.Base(subject))
		n.bars[subject] = bar
	}

	return size, bar
}

// Wait blocks until every bar finished rendering.
func (n *sendNotifier) Wait() {
	n.tracker.Wait()
}

// Abort drops unfinished bars so a failed send does not hang the
// terminal.
func (n *sendNotifier) Abort() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, bar := range n.bars {
		bar.Abort(true)
	}
}
