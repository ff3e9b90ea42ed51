package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"site-audit-be/pkg/survey"

	"github.com/google/uuid"
)

const maxPhotoSize = 10 * 1024 * 1024

// IPhotoStore keeps uploaded photos on local disk under the upload
// directory, one folder per session.
type IPhotoStore interface {
	Save(ctx context.Context, sessionID string, file *multipart.FileHeader) (survey.FileRef, error)
	Open(ref survey.FileRef) (io.ReadCloser, error)
	Remove(sessionID string, ref survey.FileRef) error
	RemoveSession(sessionID string) error
}

type photoStore struct {
	root string
}

func NewPhotoStore(root string) IPhotoStore {
	return &photoStore{root: root}
}

func (p *photoStore) Save(ctx context.Context, sessionID string, file *multipart.FileHeader) (survey.FileRef, error) {
	if err := checkSessionDir(sessionID); err != nil {
		return survey.FileRef{}, err
	}
	if file.Size > maxPhotoSize {
		return survey.FileRef{}, fmt.Errorf("%s: file too large (max 10MB)", file.Filename)
	}
	contentType := file.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return survey.FileRef{}, fmt.Errorf("%s: not an image (%s)", file.Filename, contentType)
	}

	src, err := file.Open()
	if err != nil {
		return survey.FileRef{}, err
	}
	defer src.Close()

	dir := filepath.Join(p.root, sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return survey.FileRef{}, err
	}

	stored := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	target := filepath.Join(dir, stored)
	n, err := writeFile(target, src)
	if err != nil {
		return survey.FileRef{}, fmt.Errorf("%s: %w", file.Filename, err)
	}

	return survey.FileRef{
		Name:        filepath.Base(file.Filename),
		Path:        filepath.ToSlash(filepath.Join(sessionID, stored)),
		ContentType: contentType,
		Size:        n,
	}, nil
}

// Open reads a stored photo. Paths are relative to the root and may not
// leave it.
func (p *photoStore) Open(ref survey.FileRef) (io.ReadCloser, error) {
	target, err := p.resolve(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(target)
}

func (p *photoStore) resolve(ref survey.FileRef) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref.Path))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid photo path %q", ref.Path)
	}
	return filepath.Join(p.root, clean), nil
}

// Remove deletes one stored photo of the session. A photo that is already
// gone is not an error.
func (p *photoStore) Remove(sessionID string, ref survey.FileRef) error {
	if err := checkSessionDir(sessionID); err != nil {
		return err
	}
	target, err := p.resolve(ref)
	if err != nil {
		return err
	}
	if filepath.Dir(target) != filepath.Join(p.root, sessionID) {
		return fmt.Errorf("photo %q does not belong to session %s", ref.Path, sessionID)
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *photoStore) RemoveSession(sessionID string) error {
	if err := checkSessionDir(sessionID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(p.root, sessionID))
}

// checkSessionDir rejects ids that would name a directory outside root.
func checkSessionDir(sessionID string) error {
	if sessionID == "" || sessionID == "." || sessionID == ".." || strings.ContainsAny(sessionID, `/\`) {
		return fmt.Errorf("invalid session id %q", sessionID)
	}
	return nil
}

// writeFile copies src into a new file at target. On any failure, including
// the final close, the partial file is removed.
func writeFile(target string, src io.Reader) (n int64, err error) {
	dst, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(target)
		}
	}()
	return io.Copy(dst, src)
}
