package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/SprintFox/Kitsunet-Share/logger"
	"golang.org/x/net/netutil"
)

// DefaultMaxConns caps simultaneous inbound transfer connections.
// Zero disables the cap.
const DefaultMaxConns = 64

var (
	// ErrConnectionAborted means the sender went away before
	// delivering every byte the batch header promised.
	ErrConnectionAborted = errors.New("connection closed prematurely")

	// ErrUnsafeFileName means batch metadata tried to name a file that
	// cannot be stored as a plain entry of the download directory.
	ErrUnsafeFileName = errors.New("unsafe file name in batch metadata")
)

// Server accepts inbound transfer connections, reads batch headers,
// parks each connection on an offer decision and streams accepted
// files into Dir.
type Server struct {
	offers   *Offers
	notifier Notifier
	log      logger.Logger

	Dir      string
	Port     int
	MaxConns int

	ln net.Listener
}

func NewServer(offers *Offers, notifier Notifier, log logger.Logger) *Server {
	return &Server{
		offers:   offers,
		notifier: notifier,
		log:      log,
		Port:     TransferPort,
		MaxConns: DefaultMaxConns,
	}
}

// Init binds the transfer listener. Serve calls Init itself when
// needed; calling it first only makes bind failures surface earlier.
func (s *Server) Init() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return fmt.Errorf("failed to bind transfer listener: %w", err)
	}

	if s.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.MaxConns)
	}

	s.ln = ln
	return nil
}

func (s *Server) Close() error {
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

// Serve accepts connections until ctx is cancelled. Every connection
// runs on its own goroutine; a failed one is logged and never stops
// the accept loop.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Init(); err != nil {
			return err
		}
	}
	defer s.Close()

	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			s.log.WithStr("error", err.Error()).Warn("accept failed")
			continue
		}

		go func(conn net.Conn) {
			defer conn.Close()

			if err := s.handle(conn); err != nil {
				s.log.WithStr("remote", conn.RemoteAddr().String()).
					WithStr("error", err.Error()).
					Error("inbound batch failed")
			}
		}(conn)
	}
}

func (s *Server) handle(conn net.Conn) error {
	batch, err := ReadBatchHeader(conn)
	if err != nil {
		return err
	}

	id, decision := s.offers.Create()

	s.log.WithStr("offer", id).
		WithStr("remote", conn.RemoteAddr().String()).
		WithInt("files", len(batch)).
		Info("incoming batch")

	s.notifier.FileOffer(BatchOffer{
		ID:        id,
		From:      remoteIP(conn),
		Files:     batch,
		TotalSize: batch.TotalSize(),
	})

	// The decision is a human's to make, so there is deliberately no
	// timeout here. The connection stays parked until someone decides
	// or the sender gives up.
	if accepted := <-decision; !accepted {
		s.log.WithStr("offer", id).Info("batch rejected")

		_, err := conn.Write([]byte{RejectByte})
		return err
	}

	if _, err := conn.Write([]byte{AcceptByte}); err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	for _, meta := range batch {
		if err := s.receiveFile(conn, meta); err != nil {
			return err
		}
	}

	s.log.WithStr("offer", id).WithInt("files", len(batch)).Info("batch received")
	return nil
}

// receiveFile streams exactly meta.Size bytes from conn into Dir,
// reporting progress per chunk.
func (s *Server) receiveFile(conn io.Reader, meta FileMetadata) error {
	name, err := safeFileName(meta.Name)
	if err != nil {
		return err
	}

	path := filepath.Join(s.Dir, name)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var received uint64
	buf := make([]byte, ChunkSize)

	for received < meta.Size {
		limit := min(uint64(len(buf)), meta.Size-received)

		n, err := conn.Read(buf[:limit])
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return werr
			}

			received += uint64(n)

			s.notifier.TransferProgress(Progress{
				Subject:   name,
				Direction: Inbound,
				Percent:   float64(received) / float64(meta.Size) * 100,
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) && received == meta.Size {
				break
			}
			if errors.Is(err, io.EOF) {
				return ErrConnectionAborted
			}
			return err
		}
		if n == 0 {
			return ErrConnectionAborted
		}
	}

	s.notifier.TransferComplete(Completion{
		Subject:   name,
		Direction: Inbound,
		SavedPath: path,
	})

	return nil
}

// safeFileName flattens whatever the sender declared to a bare name
// inside the download directory.
func safeFileName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", ErrUnsafeFileName
	}

	return base, nil
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}

	return host
}
