package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/justda2ofus/memories_backend/models"
)

type fakeFeedSource struct {
	mu    sync.Mutex
	posts []models.Post
}

func (f *fakeFeedSource) FindAll(ctx context.Context) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out, nil
}

func (f *fakeFeedSource) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	return nil, errors.New("change streams not supported")
}

func (f *fakeFeedSource) set(posts []models.Post) {
	f.mu.Lock()
	f.posts = posts
	f.mu.Unlock()
}

func somePost(album string) models.Post {
	return models.Post{
		ID:        primitive.NewObjectID(),
		AlbumName: album,
		Media:     []models.MediaItem{{URL: "https://res.example.com/upload/x.jpg", Kind: models.KindImage}},
		Timestamp: time.Now(),
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	source := &fakeFeedSource{}
	source.set([]models.Post{somePost("Trip")})
	feed := NewFeedService(source)

	got := make(chan []models.Post, 1)
	unsubscribe := feed.Subscribe(func(posts []models.Post) {
		select {
		case got <- posts:
		default:
		}
	})
	defer unsubscribe()

	select {
	case posts := <-got:
		if len(posts) != 1 || posts[0].AlbumName != "Trip" {
			t.Fatalf("unexpected initial snapshot: %v", posts)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot delivered")
	}
}

func TestRefreshDispatchesOnlyOnChange(t *testing.T) {
	source := &fakeFeedSource{}
	feed := NewFeedService(source)

	var mu sync.Mutex
	var deliveries int
	unsubscribe := feed.Subscribe(func(posts []models.Post) {
		mu.Lock()
		deliveries++
		mu.Unlock()
	})
	defer unsubscribe()

	// Wait out the initial delivery
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return deliveries >= 1
	})

	source.set([]models.Post{somePost("Trip")})
	feed.refresh(context.Background())

	mu.Lock()
	after := deliveries
	mu.Unlock()
	if after < 2 {
		t.Fatalf("expected a delivery after a change, got %d total", after)
	}

	// Identical state: no extra delivery
	feed.refresh(context.Background())
	mu.Lock()
	final := deliveries
	mu.Unlock()
	if final != after {
		t.Fatalf("unchanged state produced a delivery: %d -> %d", after, final)
	}
}

func TestUnsubscribeIsIdempotentAndStopsDelivery(t *testing.T) {
	source := &fakeFeedSource{}
	feed := NewFeedService(source)

	var mu sync.Mutex
	var deliveries int
	unsubscribe := feed.Subscribe(func(posts []models.Post) {
		mu.Lock()
		deliveries++
		mu.Unlock()
	})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return deliveries >= 1
	})

	unsubscribe()
	unsubscribe() // calling twice has the same effect as once

	mu.Lock()
	before := deliveries
	mu.Unlock()

	source.set([]models.Post{somePost("Trip")})
	feed.refresh(context.Background())

	mu.Lock()
	after := deliveries
	mu.Unlock()
	if after != before {
		t.Fatalf("callback fired after unsubscribe: %d -> %d", before, after)
	}
}

func TestConcurrentSubscribersSeeTheSameOrder(t *testing.T) {
	source := &fakeFeedSource{}
	newer := somePost("B")
	older := somePost("A")
	source.set([]models.Post{newer, older}) // store order, newest first
	feed := NewFeedService(source)

	snapshots := make(chan []models.Post, 2)
	for i := 0; i < 2; i++ {
		unsubscribe := feed.Subscribe(func(posts []models.Post) {
			select {
			case snapshots <- posts:
			default:
			}
		})
		defer unsubscribe()
	}

	for i := 0; i < 2; i++ {
		select {
		case posts := <-snapshots:
			if len(posts) != 2 || posts[0].ID != newer.ID {
				t.Fatalf("subscriber %d saw wrong order: %v", i, posts)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("subscriber %d never got a snapshot", i)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestUnsubscribeWaitsOutInFlightDelivery(t *testing.T) {
	source := &fakeFeedSource{}
	source.set([]models.Post{somePost("Trip")})
	feed := NewFeedService(source)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var deliveries int
	unsubscribe := feed.Subscribe(func(posts []models.Post) {
		mu.Lock()
		deliveries++
		mu.Unlock()
		entered <- struct{}{}
		<-release
	})

	// The initial delivery is now parked inside the callback
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("no initial delivery")
	}

	done := make(chan struct{})
	go func() {
		unsubscribe()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("unsubscribe returned while a delivery was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unsubscribe never returned")
	}

	// A change after teardown must not reach the callback
	source.set([]models.Post{somePost("Later"), somePost("Trip")})
	feed.refresh(context.Background())

	mu.Lock()
	got := deliveries
	mu.Unlock()
	if got != 1 {
		t.Fatalf("callback fired after unsubscribe: %d deliveries", got)
	}
}
