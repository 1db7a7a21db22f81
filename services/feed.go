package services

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/justda2ofus/memories_backend/models"
)

// FeedSource is the store-side surface the feed needs: the standing
// newest-first query and a change stream over the post collection.
type FeedSource interface {
	FindAll(ctx context.Context) ([]models.Post, error)
	Watch(ctx context.Context) (*mongo.ChangeStream, error)
}

// FeedService maintains a live, timestamp-ordered mirror of all posts and
// fans full snapshots out to subscribers. It owns the watcher and its
// reconnection policy; consumers own only their callback and its teardown.
type FeedService struct {
	source FeedSource

	mu     sync.Mutex
	nextID int
	subs   map[int]*feedSub
	latest []models.Post
}

// feedSub guards one subscriber's callback so a teardown can wait out a
// delivery already in flight.
type feedSub struct {
	mu      sync.Mutex
	fn      func([]models.Post)
	removed bool
}

// NewFeedService creates a new feed service instance
func NewFeedService(source FeedSource) *FeedService {
	return &FeedService{
		source: source,
		subs:   make(map[int]*feedSub),
		latest: []models.Post{},
	}
}

// Subscribe registers onChange and returns its teardown. The current full
// snapshot is delivered soon after subscription so a fresh consumer is
// never empty by race. The returned function is idempotent; no callback
// fires after it returns. Teardown blocks until a delivery already in
// flight finishes, so it must not be called from inside onChange.
func (f *FeedService) Subscribe(onChange func([]models.Post)) func() {
	sub := &feedSub{fn: onChange}
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	f.mu.Unlock()

	go f.deliverInitial(id)

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()

		// Wait out any delivery that looked the subscriber up before
		// the map entry was removed
		sub.mu.Lock()
		sub.removed = true
		sub.mu.Unlock()
	}
}

// Latest returns the most recently delivered snapshot.
func (f *FeedService) Latest() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, len(f.latest))
	copy(out, f.latest)
	return out
}

// Start launches the change-stream watcher. It runs until ctx is canceled.
func (f *FeedService) Start(ctx context.Context) {
	go func() {
		// One refresh up front so Latest is populated before any change
		f.refresh(ctx)
		f.watch(ctx)
	}()
}

func (f *FeedService) watch(ctx context.Context) {
	for ctx.Err() == nil {
		stream, err := f.source.Watch(ctx)
		if err != nil {
			// Change streams need a replica set; fall back to polling on
			// standalone deployments
			log.Printf("Feed: change stream unavailable, polling instead: %v", err)
			f.poll(ctx)
			return
		}

		for stream.Next(ctx) {
			f.refresh(ctx)
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("Feed: change stream error, reconnecting: %v", err)
		}
		stream.Close(context.Background())

		if ctx.Err() == nil {
			time.Sleep(time.Second)
		}
	}
}

func (f *FeedService) poll(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.refresh(ctx)
		}
	}
}

// refresh re-runs the standing query and delivers the snapshot when it
// changed. The store's own ordering is the single source of truth.
func (f *FeedService) refresh(ctx context.Context) {
	posts, err := f.source.FindAll(ctx)
	if err != nil {
		log.Printf("Feed: failed to load posts: %v", err)
		return
	}

	f.mu.Lock()
	if fingerprint(posts) == fingerprint(f.latest) {
		f.mu.Unlock()
		return
	}
	f.latest = posts
	ids := make([]int, 0, len(f.subs))
	for id := range f.subs {
		ids = append(ids, id)
	}
	f.mu.Unlock()

	for _, id := range ids {
		f.notify(id, posts)
	}
}

func (f *FeedService) deliverInitial(id int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := f.source.FindAll(ctx)
	if err != nil {
		log.Printf("Feed: initial snapshot failed, using cached: %v", err)
		posts = f.Latest()
	}
	f.notify(id, posts)
}

// notify invokes one subscriber's callback if it is still registered.
// The subscriber's own lock is held across the call so an unsubscribe
// either cuts in before delivery or waits until it completes.
func (f *FeedService) notify(id int, posts []models.Post) {
	f.mu.Lock()
	sub, ok := f.subs[id]
	f.mu.Unlock()
	if !ok {
		return
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.removed {
		sub.fn(posts)
	}
}

// fingerprint summarizes a snapshot cheaply enough to detect changes.
func fingerprint(posts []models.Post) string {
	if len(posts) == 0 {
		return "0"
	}
	newest := posts[0]
	return newest.ID.Hex() + "/" + newest.Timestamp.UTC().Format(time.RFC3339Nano) + "/" + strconv.Itoa(len(posts))
}
