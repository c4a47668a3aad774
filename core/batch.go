package core

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// TransferPort is the well-known TCP port batches are offered on.
	TransferPort = 5001

	// ChunkSize is the read and write granularity for file bytes.
	ChunkSize = 1024 * 1024

	// MaxMetadataSize bounds the length prefix of a batch header.
	MaxMetadataSize uint64 = 4 * 1024 * 1024

	// AcceptByte and RejectByte are the single-byte answer the
	// receiver sends back after reading the batch header.
	AcceptByte byte = 0x01
	RejectByte byte = 0x00
)

var ErrMetadataTooLarge = errors.New("batch metadata exceeds maximum size")

// FileMetadata describes one file in a batch. Size is authoritative:
// exactly Size bytes follow on the wire for this file, in batch order.
type FileMetadata struct {
	Name string `json:"name"`
	Size uint64 `json:"size"`
}

// Batch is the ordered list of files carried by one connection.
type Batch []FileMetadata

func (b Batch) TotalSize() uint64 {
	var total uint64
	for _, f := range b {
		total += f.Size
	}
	return total
}

// WriteBatchHeader writes the batch metadata as a big-endian uint64
// length followed by that many bytes of JSON.
func WriteBatchHeader(w io.Writer, batch Batch) error {
	metadata, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal batch metadata: %w", err)
	}

	if err := binary.Write(w, binary.BigEndian, uint64(len(metadata))); err != nil {
		return fmt.Errorf("failed to write metadata length: %w", err)
	}

	if _, err := w.Write(metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// ReadBatchHeader reads a header written by WriteBatchHeader. The
// length prefix is checked against MaxMetadataSize before any
// allocation happens.
func ReadBatchHeader(r io.Reader) (Batch, error) {
	var length uint64
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("failed to read metadata length: %w", err)
	}

	if length > MaxMetadataSize {
		return nil, ErrMetadataTooLarge
	}

	metadata := make([]byte, length)
	if _, err := io.ReadFull(r, metadata); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var batch Batch
	if err := json.Unmarshal(metadata, &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch metadata: %w", err)
	}

	return batch, nil
}
