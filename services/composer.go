package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/justda2ofus/memories_backend/models"
	"github.com/justda2ofus/memories_backend/utils"
)

// LocalFile is an in-memory handle to one user-selected file. It lives
// only inside a composer session and is discarded on submit or replacement.
type LocalFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// Uploader sends one file to the remote media host.
type Uploader interface {
	Upload(ctx context.Context, filename, mimeType string, data []byte) (*UploadResult, error)
}

// PostStore commits finished batches to the document store.
type PostStore interface {
	Insert(ctx context.Context, albumName, caption string, media []models.MediaItem) (*models.Post, error)
}

// ProgressFunc receives composite batch progress in [0,100].
type ProgressFunc func(progress int)

type composerSession struct {
	files     []LocalFile
	previews  []models.Preview
	uploading bool
	canceled  bool
}

// ComposerService owns the not-yet-submitted batches and runs the submit
// pipeline: transform, upload per file in selection order, then one atomic
// post commit.
type ComposerService struct {
	mu       sync.Mutex
	sessions map[string]*composerSession
	host     Uploader
	posts    PostStore
}

// NewComposerService creates a new composer service instance
func NewComposerService(host Uploader, posts PostStore) *ComposerService {
	return &ComposerService{
		sessions: make(map[string]*composerSession),
		host:     host,
		posts:    posts,
	}
}

// OpenSession creates a new empty composer session and returns its id.
func (s *ComposerService) OpenSession() string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &composerSession{}
	s.mu.Unlock()
	return id
}

// SelectFiles replaces the session's pending batch wholesale. The new
// batch is fully staged before the previous one is released, so a failed
// or rejected selection leaves the current batch untouched.
func (s *ComposerService) SelectFiles(sessionID string, files []LocalFile) ([]models.Preview, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files selected")
	}

	for _, f := range files {
		if !utils.AllowedMediaType(f.MimeType) {
			return nil, fmt.Errorf("unsupported file type %q for %s (photos, videos and PDFs only)", f.MimeType, f.Name)
		}
		if len(f.Data) > utils.MaxFileSize {
			return nil, fmt.Errorf("%s is too large. Maximum size is %d bytes", f.Name, utils.MaxFileSize)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown composer session %s", sessionID)
	}
	if sess.uploading {
		return nil, fmt.Errorf("a batch is already being published for session %s", sessionID)
	}

	previews := make([]models.Preview, 0, len(files))
	for _, f := range files {
		url, err := utils.SavePreview(f.Data, f.Name)
		if err != nil {
			// Roll back what was staged; the current batch stays as is
			releasePreviewList(previews)
			return nil, err
		}
		preview := models.Preview{Name: f.Name, MimeType: f.MimeType, URL: url}
		if utils.IsVideoMime(f.MimeType) {
			thumb, err := utils.GenerateVideoThumbnail(url)
			if err != nil {
				log.Printf("Warning: could not generate video thumbnail for %s: %v", f.Name, err)
			} else {
				preview.ThumbnailURL = thumb
			}
		}
		previews = append(previews, preview)
	}

	// Only now let go of the batch being replaced
	releasePreviews(sess)

	sess.files = files
	sess.previews = previews

	out := make([]models.Preview, len(previews))
	copy(out, previews)
	return out, nil
}

// Previews returns the current preview list for a session.
func (s *ComposerService) Previews(sessionID string) ([]models.Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown composer session %s", sessionID)
	}
	out := make([]models.Preview, len(sess.previews))
	copy(out, sess.previews)
	return out, nil
}

// Submit publishes the session's pending batch as one post. Files are
// processed strictly sequentially: images are re-encoded, each file is
// uploaded, and only after every upload succeeds is the post committed.
// Any failure aborts the batch; no partial post is ever written. On return
// the session's transient state is reset either way.
func (s *ComposerService) Submit(ctx context.Context, sessionID string, req models.SubmitRequest, onProgress ProgressFunc) (*models.Post, error) {
	albumName := strings.TrimSpace(req.AlbumName)
	if albumName == "" {
		return nil, fmt.Errorf("album name is required")
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("unknown composer session %s", sessionID)
	}
	if sess.uploading {
		s.mu.Unlock()
		return nil, fmt.Errorf("a batch is already being published for session %s", sessionID)
	}
	files := sess.files
	if len(files) == 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("no files selected")
	}
	sess.uploading = true
	s.mu.Unlock()

	defer s.finishBatch(sessionID)

	if onProgress == nil {
		onProgress = func(int) {}
	}

	total := len(files)
	onProgress(0)

	media := make([]models.MediaItem, 0, total)
	for i, f := range files {
		if s.isCanceled(sessionID) {
			return nil, &CanceledError{Session: sessionID}
		}

		payload := f.Data
		if utils.IsImageMime(f.MimeType) {
			shrunk, err := utils.CompressImage(payload)
			if err != nil {
				return nil, &TransformError{Filename: f.Name, Err: err}
			}
			payload = shrunk
		}

		onProgress(utils.BatchProgress(i, total))

		result, err := s.host.Upload(ctx, f.Name, f.MimeType, payload)
		if err != nil {
			return nil, err
		}

		media = append(media, models.MediaItem{
			URL:          result.SecureURL,
			PublicID:     result.PublicID,
			ResourceType: result.ResourceType,
			MimeType:     f.MimeType,
			Kind:         models.KindFrom(f.MimeType, result.ResourceType),
			OriginalName: f.Name,
		})

		onProgress(utils.BatchProgress(i+1, total))
	}

	post, err := s.posts.Insert(ctx, albumName, strings.TrimSpace(req.Caption), media)
	if err != nil {
		return nil, &CommitError{Err: err}
	}
	return post, nil
}

// CloseSession tears the session down. An in-flight batch is marked
// canceled and aborts between files; otherwise the session and its
// previews are removed immediately.
func (s *ComposerService) CloseSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	sess.canceled = true
	if !sess.uploading {
		releasePreviews(sess)
		sess.files = nil
		delete(s.sessions, sessionID)
	}
}

func (s *ComposerService) isCanceled(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	return !ok || sess.canceled
}

// finishBatch resets transient submit state, releasing previews whether
// the batch succeeded or failed so a retry starts from a clean slate.
func (s *ComposerService) finishBatch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	releasePreviews(sess)
	sess.files = nil
	sess.uploading = false
	if sess.canceled {
		delete(s.sessions, sessionID)
	}
}

// releasePreviews releases a session's preview resources exactly once.
// Callers hold the composer lock.
func releasePreviews(sess *composerSession) {
	releasePreviewList(sess.previews)
	sess.previews = nil
}

func releasePreviewList(previews []models.Preview) {
	for _, p := range previews {
		if err := utils.ReleasePreview(p.URL); err != nil {
			log.Printf("Error releasing preview: %v", err)
		}
		if p.ThumbnailURL != "" {
			if err := utils.ReleasePreview(p.ThumbnailURL); err != nil {
				log.Printf("Error releasing thumbnail: %v", err)
			}
		}
	}
}
