package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stwalsh4118/landbroker/api/internal/routing"
)

// Form keys carrying file names already stored by the upload service.
const (
	uploadedPassbookPhoto = "uploaded_passbook_photo"
	uploadedLandBorder    = "uploaded_land_border"
	uploadedLandPhoto     = "uploaded_land_photo"
	uploadedLandVideo     = "uploaded_land_video"

	// uploadsKey holds the same references in a JSON body.
	uploadsKey = "uploads"
)

// uploadsJSON is the JSON form of routing.FileRefs.
type uploadsJSON struct {
	PassbookPhoto string   `json:"passbook_photo"`
	LandBorder    string   `json:"land_border"`
	LandPhoto     []string `json:"land_photo"`
	LandVideo     []string `json:"land_video"`
}

// readRecordInput decodes a create or update body into a field bag and the
// uploaded file references. Multipart, urlencoded and JSON bodies are accepted.
func readRecordInput(c *gin.Context) (routing.FieldBag, routing.FileRefs, error) {
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, routing.FileRefs{}, fmt.Errorf("invalid multipart body: %w", err)
		}
		bag, files := splitForm(form.Value)
		return bag, files, nil
	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, routing.FileRefs{}, fmt.Errorf("invalid form body: %w", err)
		}
		bag, files := splitForm(c.Request.PostForm)
		return bag, files, nil
	default:
		return readJSONInput(c)
	}
}

func splitForm(values map[string][]string) (routing.FieldBag, routing.FileRefs) {
	bag := make(routing.FieldBag, len(values))
	var files routing.FileRefs

	for key, v := range values {
		switch key {
		case uploadedPassbookPhoto:
			files.PassbookPhoto = lastNonBlank(v)
		case uploadedLandBorder:
			files.LandBorder = lastNonBlank(v)
		case uploadedLandPhoto:
			files.LandPhoto = nonBlank(v)
		case uploadedLandVideo:
			files.LandVideo = nonBlank(v)
		default:
			bag.Set(key, v...)
		}
	}
	return bag, files
}

func readJSONInput(c *gin.Context) (routing.FieldBag, routing.FileRefs, error) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, routing.FileRefs{}, fmt.Errorf("invalid JSON body: %w", err)
	}

	bag := make(routing.FieldBag, len(raw))
	var files routing.FileRefs

	for key, value := range raw {
		if key == uploadsKey {
			var up uploadsJSON
			if err := json.Unmarshal(value, &up); err != nil {
				return nil, routing.FileRefs{}, fmt.Errorf("invalid %s: %w", uploadsKey, err)
			}
			files = routing.FileRefs{
				PassbookPhoto: strings.TrimSpace(up.PassbookPhoto),
				LandBorder:    strings.TrimSpace(up.LandBorder),
				LandPhoto:     nonBlank(up.LandPhoto),
				LandVideo:     nonBlank(up.LandVideo),
			}
			continue
		}

		value = bytes.TrimSpace(value)
		switch {
		case len(value) == 0 || bytes.Equal(value, []byte("null")):
			continue
		case value[0] == '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil, routing.FileRefs{}, fmt.Errorf("invalid value for %s: %w", key, err)
			}
			bag.Set(key, s)
		default:
			// Numbers, booleans and arrays keep their JSON text
			bag.Set(key, string(value))
		}
	}
	return bag, files, nil
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lastNonBlank(values []string) string {
	kept := nonBlank(values)
	if len(kept) == 0 {
		return ""
	}
	return kept[len(kept)-1]
}
