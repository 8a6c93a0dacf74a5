package handlers

import (
	"strings"

	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// FileResolver turns stored file names into URLs served by the file service.
type FileResolver struct {
	baseURL string
}

// NewFileResolver creates a resolver rooted at baseURL.
func NewFileResolver(baseURL string) *FileResolver {
	return &FileResolver{baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *FileResolver) url(kind, name string) string {
	if name == "" || strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	return r.baseURL + "/" + kind + "/" + strings.TrimLeft(name, "/")
}

func (r *FileResolver) image(name string) string { return r.url("images", name) }

func (r *FileResolver) video(name string) string { return r.url("videos", name) }

func (r *FileResolver) resolveRef(ref *string, fn func(string) string) *string {
	if ref == nil {
		return nil
	}
	resolved := fn(*ref)
	return &resolved
}

func (r *FileResolver) resolveList(names []string, fn func(string) string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fn(name)
	}
	return out
}

// Resolve returns a copy of rec with every file reference replaced by its URL.
func (r *FileResolver) Resolve(rec models.LandRecord) models.LandRecord {
	rec.Parcel.PassbookPhoto = r.resolveRef(rec.Parcel.PassbookPhoto, r.image)
	rec.GPS.LandBorder = r.resolveRef(rec.GPS.LandBorder, r.image)
	rec.Media.LandPhoto = r.resolveList(rec.Media.LandPhoto, r.image)
	rec.Media.LandVideo = r.resolveList(rec.Media.LandVideo, r.video)
	return rec
}

// ResolveAll resolves a list of records.
func (r *FileResolver) ResolveAll(recs []models.LandRecord) []models.LandRecord {
	out := make([]models.LandRecord, len(recs))
	for i, rec := range recs {
		out[i] = r.Resolve(rec)
	}
	return out
}
