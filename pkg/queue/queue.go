package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hiway/tonal/pkg/chord"
	"github.com/hiway/tonal/pkg/player"
	"github.com/hiway/tonal/pkg/synth"
)

// ErrStopped is returned when adding to a queue that no longer accepts chords.
var ErrStopped = errors.New("queue stopped")

// Settings are the playback parameters every chord in a queue is sampled with.
type Settings struct {
	BPM     float64
	Rate    uint32
	Options []synth.Option
}

// Queue plays chords one after another on a single player.
type Queue struct {
	name     string
	settings Settings
	player   player.Player
	log      zerolog.Logger

	itemChan chan *chord.Chord
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup // pending sends
}

// NewQueue creates a queue holding up to capacity chords and starts its worker.
func NewQueue(name string, capacity int, settings Settings, p player.Player, log zerolog.Logger) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:     name,
		settings: settings,
		player:   p,
		log:      log.With().Str("queue", name).Logger(),
		itemChan: make(chan *chord.Chord, capacity),
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	go q.run()

	return q
}

// Add queues c without blocking. It reports false when the queue is full or stopped.
func (q *Queue) Add(c *chord.Chord) bool {
	if !q.acquire() {
		return false
	}
	defer q.wg.Done()

	select {
	case q.itemChan <- c:
		q.log.Trace().Int("pitches", len(c.Pitches())).Msg("Chord added to queue")
		return true
	default:
		q.log.Debug().Msg("Queue full, dropping chord")
		return false
	}
}

// Enqueue queues c, waiting for room until ctx is done or the queue stops.
func (q *Queue) Enqueue(ctx context.Context, c *chord.Chord) error {
	if !q.acquire() {
		return ErrStopped
	}
	defer q.wg.Done()

	select {
	case q.itemChan <- c:
		q.log.Trace().Int("pitches", len(c.Pitches())).Msg("Chord enqueued")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.stopChan:
		return ErrStopped
	}
}

// acquire registers a pending send unless the queue is closed.
func (q *Queue) acquire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.wg.Add(1)
	return true
}

// close stops accepting chords and closes the item channel once pending sends finish.
func (q *Queue) close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	close(q.itemChan)
}

// Wait stops accepting chords and blocks until every queued chord was played
// or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	q.close()
	select {
	case <-q.doneChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop abandons queued chords and interrupts the one playing.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.log.Debug().Msg("Stopping queue")
		close(q.stopChan)
		q.cancel()
		q.close()
	})
	<-q.doneChan
}

// run plays queued chords until the channel is closed or the queue is stopped.
func (q *Queue) run() {
	q.log.Debug().Msg("Queue processor started")
	defer q.log.Debug().Msg("Queue processor stopped")
	defer close(q.doneChan)
	defer q.cancel()

	for {
		select {
		case <-q.stopChan:
			return
		case c, ok := <-q.itemChan:
			if !ok {
				return
			}
			q.play(c)
		}
	}
}

func (q *Queue) play(c *chord.Chord) {
	samples := c.Samples(q.settings.BPM, q.settings.Rate, q.settings.Options...)
	q.log.Trace().
		Stringer("length", c.Length()).
		Float64("volume", c.Volume()).
		Int("samples", samples.Len()).
		Msg("Playing queued chord")

	if err := q.player.Play(q.ctx, samples); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		q.log.Error().Err(err).Msg("Failed to play chord")
	}
}
