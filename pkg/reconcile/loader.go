package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/picogrid/brightfleet/pkg/fleet"
	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/models"
)

// Source is anything a document can be loaded from.
type Source interface {
	Load(ctx context.Context) (*models.Document, error)
}

// Loader installs documents into a fleet.
type Loader struct {
	fleet *fleet.Fleet
	log   logger.Logger
}

// NewLoader creates a loader bound to f
func NewLoader(f *fleet.Fleet) *Loader {
	return &Loader{
		fleet: f,
		log:   logger.WithPrefix("reconcile"),
	}
}

// Load normalizes doc, makes it the fleet's document, rebuilds every ship
// docked at its island and signals the load. It returns the number of legacy
// deployments that were given an id, which only reach the store once saved.
func (l *Loader) Load(doc *models.Document) int {
	doc = Normalize(doc)
	l.fleet.SetDocument(doc)
	upgraded := l.fleet.RebuildShips()

	l.log.WithFields(map[string]interface{}{
		"teams":    len(doc.Teams),
		"islands":  len(doc.Islands),
		"ships":    l.fleet.Ships().Len(),
		"upgraded": upgraded,
	}).Debug("Document loaded")
	l.fleet.Emit(fleet.Event{Type: fleet.EventLoaded, Message: "Fleet Command Loaded"})
	return upgraded
}

// LoadFrom loads from src. When src fails the fleet starts from the empty
// document and the error is logged and returned for the caller to report.
func (l *Loader) LoadFrom(ctx context.Context, src Source) error {
	doc, err := src.Load(ctx)
	if err != nil {
		l.log.Errorf("Failed to load initial state: %v", err)
		l.Load(models.EmptyDocument())
		return fmt.Errorf("failed to load state: %w", err)
	}
	if l.Load(doc) > 0 {
		l.fleet.Persist()
	}
	return nil
}

// Import decodes r and loads it, then schedules a save. A malformed file
// leaves the fleet untouched.
func (l *Loader) Import(r io.Reader) error {
	doc, err := Decode(r)
	if err != nil {
		return err
	}
	l.Load(doc)
	l.fleet.Persist()
	return nil
}

// Decode parses a document without touching any fleet state.
func Decode(r io.Reader) (*models.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("failed to parse document: empty input")
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &doc, nil
}

// Encode writes doc as indented JSON, the format used for exports.
func Encode(w io.Writer, doc *models.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}
