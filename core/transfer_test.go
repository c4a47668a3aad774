package core

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/SprintFox/Kitsunet-Share/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer runs a transfer server on an ephemeral port until the
// test ends and returns it with its bound port.
func startServer(t *testing.T, dir string, notifier Notifier) (*Server, int) {
	t.Helper()

	srv := NewServer(NewOffers(), notifier, logger.New())
	srv.Dir = dir
	srv.Port = 0
	require.NoError(t, srv.Init())

	go srv.Serve(t.Context())

	return srv, srv.ln.Addr().(*net.TCPAddr).Port
}

func TestTransferEndToEnd(t *testing.T) {
	downloads := t.TempDir()
	serverNotifier := newCaptureNotifier()
	srv, port := startServer(t, downloads, serverNotifier)

	source := t.TempDir()
	payload := []byte("the quick brown fox jumps over the lazy dog")
	a := writeTempFile(t, source, "a.txt", payload)
	empty := writeTempFile(t, source, "empty.bin", nil)

	// Accept whatever shows up.
	go func() {
		offer := <-serverNotifier.offers
		srv.offers.Resolve(offer.ID, true)
	}()

	senderNotifier := newCaptureNotifier()
	sender := NewSender(senderNotifier, logger.New())
	sender.Port = port

	require.NoError(t, sender.Send(t.Context(), "127.0.0.1", []string{a, empty}))

	waitFor(t, func() bool { return serverNotifier.completionCount() == 2 }, "receiver never finished the batch")

	got, err := os.ReadFile(filepath.Join(downloads, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	info, err := os.Stat(filepath.Join(downloads, "empty.bin"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	// Both sides saw both files finish, each under its own subject.
	assert.Equal(t, 2, senderNotifier.completionCount())

	done, ok := serverNotifier.completionFor("a.txt")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(downloads, "a.txt"), done.SavedPath)

	_, ok = senderNotifier.completionFor(a)
	assert.True(t, ok)
}

func TestTransferRejectedEndToEnd(t *testing.T) {
	downloads := t.TempDir()
	serverNotifier := newCaptureNotifier()
	srv, port := startServer(t, downloads, serverNotifier)

	source := t.TempDir()
	a := writeTempFile(t, source, "a.txt", []byte("no thanks"))

	go func() {
		offer := <-serverNotifier.offers
		srv.offers.Resolve(offer.ID, false)
	}()

	sender := NewSender(NopNotifier{}, logger.New())
	sender.Port = port

	err := sender.Send(t.Context(), "127.0.0.1", []string{a})
	assert.ErrorIs(t, err, ErrOfferRejected)

	entries, err := os.ReadDir(downloads)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransferOfferCarriesMetadata(t *testing.T) {
	downloads := t.TempDir()
	serverNotifier := newCaptureNotifier()
	srv, port := startServer(t, downloads, serverNotifier)

	source := t.TempDir()
	a := writeTempFile(t, source, "report.pdf", make([]byte, 1200))
	b := writeTempFile(t, source, "notes.txt", make([]byte, 300))

	sender := NewSender(NopNotifier{}, logger.New())
	sender.Port = port

	done := make(chan error, 1)
	go func() { done <- sender.Send(t.Context(), "127.0.0.1", []string{a, b}) }()

	offer := <-serverNotifier.offers
	assert.NotEmpty(t, offer.ID)
	assert.Equal(t, "127.0.0.1", offer.From)
	assert.Equal(t, uint64(1500), offer.TotalSize)
	require.Len(t, offer.Files, 2)
	assert.Equal(t, FileMetadata{Name: "report.pdf", Size: 1200}, offer.Files[0])
	assert.Equal(t, FileMetadata{Name: "notes.txt", Size: 300}, offer.Files[1])

	srv.offers.Resolve(offer.ID, true)
	require.NoError(t, <-done)
}

func TestTransferSimultaneousOffers(t *testing.T) {
	downloads := t.TempDir()
	serverNotifier := newCaptureNotifier()
	srv, port := startServer(t, downloads, serverNotifier)

	source := t.TempDir()
	accepted := writeTempFile(t, source, "wanted.txt", []byte("yes"))
	declined := writeTempFile(t, source, "unwanted.txt", []byte("no"))

	results := make(map[string]chan error)
	for _, path := range []string{accepted, declined} {
		ch := make(chan error, 1)
		results[filepath.Base(path)] = ch

		go func(path string) {
			sender := NewSender(NopNotifier{}, logger.New())
			sender.Port = port
			ch <- sender.Send(t.Context(), "127.0.0.1", []string{path})
		}(path)
	}

	first := <-serverNotifier.offers
	second := <-serverNotifier.offers
	require.NotEqual(t, first.ID, second.ID, "each connection gets its own offer")

	// Each decision lands on its own connection regardless of arrival
	// order.
	for _, offer := range []BatchOffer{first, second} {
		require.Len(t, offer.Files, 1)
		srv.offers.Resolve(offer.ID, offer.Files[0].Name == "wanted.txt")
	}

	assert.NoError(t, <-results["wanted.txt"])
	assert.ErrorIs(t, <-results["unwanted.txt"], ErrOfferRejected)

	waitFor(t, func() bool {
		_, err := os.Stat(filepath.Join(downloads, "wanted.txt"))
		return err == nil
	}, "accepted file never landed")

	_, err := os.Stat(filepath.Join(downloads, "unwanted.txt"))
	assert.True(t, os.IsNotExist(err))
}
