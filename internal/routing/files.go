package routing

import "github.com/stwalsh4118/landbroker/api/internal/models"

// FileRefs are stored file names produced by the upload collaborator.
// A non-empty reference always wins over a body field for the same column.
type FileRefs struct {
	PassbookPhoto string
	LandBorder    string
	LandPhoto     []string
	LandVideo     []string
}

// IsEmpty reports whether no file was uploaded.
func (f FileRefs) IsEmpty() bool {
	return f.PassbookPhoto == "" && f.LandBorder == "" && len(f.LandPhoto) == 0 && len(f.LandVideo) == 0
}

// Apply overwrites the file-backed columns of p with the uploaded references.
func (f FileRefs) Apply(p *models.RecordPatch) {
	if f.PassbookPhoto != "" {
		name := f.PassbookPhoto
		p.Parcel.PassbookPhoto = &name
	}
	if f.LandBorder != "" {
		name := f.LandBorder
		p.GPS.LandBorder = &name
	}
	if len(f.LandPhoto) > 0 {
		p.Media.LandPhoto = append([]string(nil), f.LandPhoto...)
	}
	if len(f.LandVideo) > 0 {
		p.Media.LandVideo = append([]string(nil), f.LandVideo...)
	}
}
