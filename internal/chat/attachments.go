package chat

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxAttachmentBytes keeps the base64 payload under the proxy's 10 MB body limit.
const MaxAttachmentBytes = 7 << 20

var (
	ErrNotImage = errors.New("only image files can be attached")
	ErrTooLarge = errors.New("image is too large to send")
)

// Attachment is a staged image.
type Attachment struct {
	ID       string
	Name     string
	MimeType string
	Size     int
	// Data is the base64 encoded file content.
	Data    string
	DataURL string
}

// FilePayload is the attachment as it is sent to the completion gateway.
type FilePayload struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// AttachmentStore holds the images staged for the next message.
type AttachmentStore struct {
	sched    Scheduler
	items    []*Attachment
	primary  *Attachment
	visible  bool
	onChange func()
}

func NewAttachmentStore(sched Scheduler) *AttachmentStore {
	return &AttachmentStore{sched: sched}
}

func (s *AttachmentStore) SetOnChange(fn func()) {
	s.onChange = fn
}

// Add decodes the file at path in the background and stages it once ready.
// done, if non-nil, is called on the owning goroutine with the result.
// Concurrent adds complete in whatever order their decodes finish.
func (s *AttachmentStore) Add(path string, done func(*Attachment, error)) {
	go func() {
		a, err := decodeAttachment(path)
		s.sched.Post(func() {
			if err == nil {
				s.stage(a)
			}
			if done != nil {
				done(a, err)
			}
		})
	}()
}

func (s *AttachmentStore) stage(a *Attachment) {
	s.items = append(s.items, a)
	if len(s.items) == 1 {
		s.primary = a
	}
	s.visible = true
	s.changed()
}

// Remove drops the attachment with the given id. The first remaining item is
// promoted to primary; when none remain the preview is hidden.
func (s *AttachmentStore) Remove(id string) bool {
	idx := -1
	for i, a := range s.items {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if len(s.items) > 0 {
		s.primary = s.items[0]
	} else {
		s.primary = nil
		s.visible = false
	}
	s.changed()
	return true
}

func (s *AttachmentStore) Clear() {
	s.items = nil
	s.primary = nil
	s.visible = false
	s.changed()
}

func (s *AttachmentStore) List() []*Attachment {
	out := make([]*Attachment, len(s.items))
	copy(out, s.items)
	return out
}

func (s *AttachmentStore) Len() int {
	return len(s.items)
}

func (s *AttachmentStore) Primary() *Attachment {
	return s.primary
}

// PrimaryPayload returns the primary attachment in wire form, or nil.
func (s *AttachmentStore) PrimaryPayload() *FilePayload {
	if s.primary == nil || s.primary.Data == "" || s.primary.MimeType == "" {
		return nil
	}
	return &FilePayload{Data: s.primary.Data, MimeType: s.primary.MimeType}
}

// Visible reports whether the preview surface should be shown.
func (s *AttachmentStore) Visible() bool {
	return s.visible
}

func (s *AttachmentStore) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func decodeAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}
	if info.Size() > MaxAttachmentBytes {
		return nil, fmt.Errorf("attach %s: %w", path, ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("attach %s (%s): %w", path, mime.String(), ErrNotImage)
	}

	mimeType, _, _ := strings.Cut(mime.String(), ";")
	encoded := base64.StdEncoding.EncodeToString(data)
	return &Attachment{
		ID:       uuid.NewString(),
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Size:     len(data),
		Data:     encoded,
		DataURL:  "data:" + mimeType + ";base64," + encoded,
	}, nil
}
