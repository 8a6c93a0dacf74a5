package routing

import (
	"errors"
	"fmt"

	"github.com/stwalsh4118/landbroker/api/internal/models"
)

// ErrInvalidField is wrapped by every FieldError.
var ErrInvalidField = errors.New("invalid field")

// FieldError names the input field that failed to parse.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

func fieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// FieldBag is flat business-field input, as decoded from a form or JSON body.
// Keys not in the routing table are ignored.
type FieldBag map[string][]string

// Set replaces the values stored under name.
func (b FieldBag) Set(name string, values ...string) {
	b[name] = values
}

// values returns the input for a canonical field name, falling back to its
// legacy spellings.
func (b FieldBag) values(name string) []string {
	if v := b[name]; len(v) > 0 {
		return v
	}
	for alias, canonical := range aliases {
		if canonical == name {
			if v := b[alias]; len(v) > 0 {
				return v
			}
		}
	}
	return nil
}

// Route converts a field bag into a typed patch.
//
// Blank values are dropped. In ModeNormal the actor becomes owner_id and the
// verification-only fields are ignored. In ModeVerification they are routed,
// status is ignored and owner_id is never touched.
func Route(bag FieldBag, mode models.Mode, actor models.Actor) (models.RecordPatch, error) {
	var patch models.RecordPatch

	// Table order keeps error reporting deterministic
	for _, field := range table {
		values := bag.values(field.Name)
		if len(values) == 0 {
			continue
		}
		if field.VerificationOnly && mode != models.ModeVerification {
			continue
		}
		if field.NormalOnly && mode == models.ModeVerification {
			continue
		}
		if _, err := field.assign(&patch, values); err != nil {
			return models.RecordPatch{}, err
		}
	}

	if mode == models.ModeNormal && actor.ID != "" {
		owner := actor.ID
		patch.Location.OwnerID = &owner
	}

	return patch, nil
}

// Build routes bag and then merges uploaded file references on top.
func Build(bag FieldBag, files FileRefs, mode models.Mode, actor models.Actor) (models.RecordPatch, error) {
	patch, err := Route(bag, mode, actor)
	if err != nil {
		return models.RecordPatch{}, err
	}
	files.Apply(&patch)
	return patch, nil
}
