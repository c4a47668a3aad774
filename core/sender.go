package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/SprintFox/Kitsunet-Share/logger"
)

// ErrOfferRejected means the recipient answered the batch header with
// a rejection byte.
var ErrOfferRejected = errors.New("file transfer rejected by recipient")

// Sender pushes batches of local files to a listening peer.
type Sender struct {
	notifier Notifier
	log      logger.Logger

	Port      int
	ChunkSize int
}

func NewSender(notifier Notifier, log logger.Logger) *Sender {
	return &Sender{
		notifier:  notifier,
		log:       log,
		Port:      TransferPort,
		ChunkSize: ChunkSize,
	}
}

// Send offers the given files to recipient and streams them on
// acceptance. It blocks until the whole batch is delivered, the
// recipient rejects it, or the connection fails.
func (s *Sender) Send(ctx context.Context, recipient string, paths []string) error {
	batch, err := ResolveFiles(paths)
	if err != nil {
		return err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(recipient, strconv.Itoa(s.Port)))
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", recipient, err)
	}
	defer conn.Close()

	if err := WriteBatchHeader(conn, batch); err != nil {
		return err
	}

	response := make([]byte, 1)
	if _, err := io.ReadFull(conn, response); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if response[0] != AcceptByte {
		return ErrOfferRejected
	}

	s.log.WithStr("recipient", recipient).WithInt("files", len(batch)).Info("batch accepted")

	for i, path := range paths {
		if err := s.sendFile(conn, path, batch[i]); err != nil {
			return err
		}
	}

	return nil
}

// ResolveFiles stats every path and builds the batch metadata. An
// unreadable path, a directory or an unusable name fails the whole
// batch before any connection is made.
func ResolveFiles(paths []string) (Batch, error) {
	batch := make(Batch, 0, len(paths))

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", path, err)
		}

		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory, not a file", path)
		}

		name, err := safeFileName(filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("%s has no usable file name: %w", path, err)
		}

		batch = append(batch, FileMetadata{
			Name: name,
			Size: uint64(info.Size()),
		})
	}

	return batch, nil
}

// sendFile copies the file to the connection in chunks, reporting
// progress against the size declared in the batch header.
func (s *Sender) sendFile(conn io.Writer, path string, meta FileMetadata) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var sent uint64
	buf := make([]byte, s.ChunkSize)

	for {
		n, err := file.Read(buf)
		if n > 0 {
			if _, werr := conn.Write(buf[:n]); werr != nil {
				return werr
			}

			sent += uint64(n)

			s.notifier.TransferProgress(Progress{
				Subject:   path,
				Direction: Outbound,
				Percent:   float64(sent) / float64(meta.Size) * 100,
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
	}

	s.notifier.TransferComplete(Completion{
		Subject:   path,
		Direction: Outbound,
	})

	return nil
}
