package core

// Direction tells which side of a transfer an event belongs to.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// BatchOffer describes an inbound batch waiting for an accept or
// reject decision. ID routes the decision back to the paused
// connection.
type BatchOffer struct {
	ID        string
	From      string
	Files     []FileMetadata
	TotalSize uint64
}

// Progress reports how far a single file has come. Subject is the
// local file path on the sending side and the bare file name on the
// receiving side.
type Progress struct {
	Subject   string
	Direction Direction
	Percent   float64
}

// Completion marks one file as fully transferred. SavedPath is set on
// the receiving side only.
type Completion struct {
	Subject   string
	Direction Direction
	SavedPath string
}

// Notifier receives protocol events. Implementations must return
// quickly; anything slow belongs on another goroutine.
type Notifier interface {
	PeersUpdated()
	FileOffer(offer BatchOffer)
	TransferProgress(p Progress)
	TransferComplete(c Completion)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) PeersUpdated()               {}
func (NopNotifier) FileOffer(BatchOffer)        {}
func (NopNotifier) TransferProgress(Progress)   {}
func (NopNotifier) TransferComplete(Completion) {}
