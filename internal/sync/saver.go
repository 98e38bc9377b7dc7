package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/store"
	"github.com/nhle/punchcard/internal/tracker"
)

// SaveState represents the current state of the background writer.
type SaveState int

const (
	SaveIdle SaveState = iota
	SaveRunning
	SaveError
)

// SaveStatus holds the writer state.
type SaveStatus struct {
	State    SaveState
	LastSave time.Time
	Pending  int
	Error    error
}

// SaveResultMsg is a tea.Msg sent when a write completes.
type SaveResultMsg struct {
	Keys  []model.Key
	Error error
}

// writeTimeout is the maximum time allowed for a single write.
const writeTimeout = 10 * time.Second

// Saver persists tracker changes in the background. It observes tracker
// change notifications, encodes the changed keys right away and writes them
// on its own goroutine, so mutating calls never wait for the store.
type Saver struct {
	kv  store.KV
	log hclog.Logger

	mu      gosync.Mutex
	pending map[model.Key][]byte
	seen    map[model.Key]uint64
	status  SaveStatus
	running bool

	writeMu   gosync.Mutex
	resultCh  chan SaveResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// New creates a Saver writing to kv.
func New(kv store.KV, logger hclog.Logger) *Saver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Saver{
		kv:        kv,
		log:       logger.Named("saver"),
		pending:   make(map[model.Key][]byte),
		seen:      make(map[model.Key]uint64),
		resultCh:  make(chan SaveResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Observe is a tracker.Observer. It queues the changed keys for writing.
// A key already queued or written from a newer change is left alone.
func (s *Saver) Observe(c tracker.Change) {
	blobs, err := store.EncodeKeys(c.Snapshot, c.Keys)
	if err != nil {
		s.log.Error("encoding change", "keys", c.Keys, "error", err)
		s.sendResult(SaveResultMsg{Keys: c.Keys, Error: err})
		return
	}

	s.mu.Lock()
	for k, b := range blobs {
		key := model.Key(k)
		if c.Seq < s.seen[key] {
			s.log.Debug("dropping stale change", "key", key, "seq", c.Seq, "seen", s.seen[key])
			continue
		}
		s.seen[key] = c.Seq
		s.pending[key] = b
	}
	s.status.Pending = len(s.pending)
	s.mu.Unlock()

	select {
	case s.triggerCh <- struct{}{}:
	default:
		// A write is already scheduled and will pick these keys up.
	}
}

// Start launches the writer goroutine and returns a tea.Cmd that waits for
// the first save result.
func (s *Saver) Start() tea.Cmd {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	go s.loop()

	return s.waitForResult()
}

// Stop halts the writer after writing everything still pending.
func (s *Saver) Stop() error {
	s.mu.Lock()
	running := s.running
	s.running = false
	s.mu.Unlock()

	if running {
		close(s.stopCh)
		<-s.doneCh
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.Flush(ctx)
}

// Flush synchronously writes every pending key.
func (s *Saver) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.pending
	s.pending = make(map[model.Key][]byte)
	s.status.State = SaveRunning
	s.status.Pending = 0
	s.mu.Unlock()

	keys := make([]model.Key, 0, len(batch))
	blobs := make(map[string][]byte, len(batch))
	for k, b := range batch {
		keys = append(keys, k)
		blobs[string(k)] = b
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	err := store.WriteBlobs(ctx, s.kv, blobs)

	s.mu.Lock()
	if err != nil {
		// Requeue what was not superseded by a newer change.
		for k, b := range batch {
			if _, newer := s.pending[k]; !newer {
				s.pending[k] = b
			}
		}
		s.status.State = SaveError
		s.status.Error = err
	} else {
		s.status.State = SaveIdle
		s.status.Error = nil
		s.status.LastSave = time.Now()
	}
	s.status.Pending = len(s.pending)
	s.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("saving %v: %w", keys, err)
		s.log.Error("save failed", "keys", keys, "error", err)
	} else {
		s.log.Debug("saved", "keys", keys)
	}
	s.sendResult(SaveResultMsg{Keys: keys, Error: err})
	return err
}

// Status returns the current writer status.
func (s *Saver) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Saver) loop() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.triggerCh:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			_ = s.Flush(ctx)
			cancel()
		}
	}
}

// sendResult sends a SaveResultMsg on the result channel without blocking.
func (s *Saver) sendResult(msg SaveResultMsg) {
	select {
	case s.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the writer
	}
}

func (s *Saver) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-s.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next save result.
// This should be called after processing a SaveResultMsg to continue
// listening for future results.
func (s *Saver) WaitForNextResult() tea.Cmd {
	return s.waitForResult()
}
