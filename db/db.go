// Package db implements the equivalence store: the persisted record of which
// revisions in different repositories hold equivalent content, and of the
// migrations already submitted between them.
//
// The whole database is one JSON document read at startup and rewritten
// atomically on WriteToLocation. There is no locking; two processes writing
// the same file concurrently lose one of the updates.
package db

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/fs"
	"github.com/input-output-hk/forge-sync/revision"
	"github.com/input-output-hk/forge-sync/schema"
)

// Store is the equivalence store consulted and updated by migrations.
type Store interface {
	// FindEquivalences returns the revisions in otherRepository recorded as
	// equivalent to rev, in store order without duplicates.
	FindEquivalences(rev revision.Revision, otherRepository string) []revision.Revision

	// NoteEquivalence records eq. Duplicates are kept.
	NoteEquivalence(eq Equivalence)

	// NoteMigration records m unless an equal migration exists and reports
	// whether it was inserted.
	NoteMigration(m SubmittedMigration) bool

	// WriteToLocation persists the whole store to path.
	WriteToLocation(ctx context.Context, path string) error
}

// DB is the file-backed Store.
type DB struct {
	fs           fs.Filesystem
	logger       *slog.Logger
	equivalences []Equivalence
	migrations   []SubmittedMigration
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used by the DB.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DB) {
		d.logger = logger
	}
}

// New returns an empty DB persisting to fsys.
func New(fsys fs.Filesystem, opts ...Option) *DB {
	d := &DB{
		fs:     fsys,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FindEquivalences implements Store.
func (d *DB) FindEquivalences(rev revision.Revision, otherRepository string) []revision.Revision {
	var out []revision.Revision
	for _, eq := range d.equivalences {
		other, ok := eq.OtherRevision(rev)
		if !ok || other.RepositoryName != otherRepository {
			continue
		}
		if !slices.Contains(out, other) {
			out = append(out, other)
		}
	}
	return out
}

// NoteEquivalence implements Store.
func (d *DB) NoteEquivalence(eq Equivalence) {
	d.logger.Debug("noting equivalence", "rev1", eq.Rev1.String(), "rev2", eq.Rev2.String())
	d.equivalences = append(d.equivalences, eq)
}

// NoteMigration implements Store.
func (d *DB) NoteMigration(m SubmittedMigration) bool {
	for _, existing := range d.migrations {
		if existing.Equal(m) {
			d.logger.Debug("migration already recorded", "migration", m.String())
			return false
		}
	}
	m.FromRevisions = append([]revision.Revision(nil), m.FromRevisions...)
	d.migrations = append(d.migrations, m)
	d.logger.Debug("noting migration", "migration", m.String())
	return true
}

// Equivalences returns a copy of the recorded equivalences in store order.
func (d *DB) Equivalences() []Equivalence {
	return slices.Clone(d.equivalences)
}

// Migrations returns a copy of the recorded migrations in store order.
func (d *DB) Migrations() []SubmittedMigration {
	out := make([]SubmittedMigration, len(d.migrations))
	for i, m := range d.migrations {
		out[i] = SubmittedMigration{
			FromRevisions: slices.Clone(m.FromRevisions),
			ToRevision:    m.ToRevision,
		}
	}
	return out
}

// document is the persisted form of a DB.
type document struct {
	Version      string               `json:"version,omitempty"`
	Equivalences []Equivalence        `json:"equivalences"`
	Migrations   []SubmittedMigration `json:"migrations"`
}

// WriteToLocation implements Store. The file is replaced atomically.
func (d *DB) WriteToLocation(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := document{
		Version:      schema.SchemaVersion,
		Equivalences: d.equivalences,
		Migrations:   d.migrations,
	}
	if doc.Equivalences == nil {
		doc.Equivalences = []Equivalence{}
	}
	if doc.Migrations == nil {
		doc.Migrations = []SubmittedMigration{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode database")
	}
	data = append(data, '\n')

	if err := fs.WriteFileAtomic(d.fs, path, data); err != nil {
		return errors.WrapWithContext(err, errors.CodeDatabase, "failed to write database",
			map[string]interface{}{"path": path})
	}

	d.logger.Info("wrote database",
		"path", path,
		"equivalences", len(d.equivalences),
		"migrations", len(d.migrations))
	return nil
}

// Load reads the database at path on fsys.
// Malformed content is an INVALID_CONFIGURATION error; a missing file is NOT_FOUND.
func Load(ctx context.Context, fsys fs.Filesystem, path string, opts ...Option) (*DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exists, err := fsys.Exists(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeDatabase, "failed to stat database",
			map[string]interface{}{"path": path})
	}
	if !exists {
		return nil, errors.Newf(errors.CodeNotFound, "database %s does not exist", path)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeDatabase, "failed to read database",
			map[string]interface{}{"path": path})
	}

	doc, err := decode(data)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "malformed database",
			map[string]interface{}{"path": path})
	}

	d := New(fsys, opts...)
	d.equivalences = doc.Equivalences
	d.migrations = doc.Migrations
	d.logger.Debug("loaded database",
		"path", path,
		"equivalences", len(d.equivalences),
		"migrations", len(d.migrations))
	return d, nil
}

// LoadOrCreate behaves like Load but returns an empty DB when path does not exist.
func LoadOrCreate(ctx context.Context, fsys fs.Filesystem, path string, opts ...Option) (*DB, error) {
	d, err := Load(ctx, fsys, path, opts...)
	if errors.GetCode(err) == errors.CodeNotFound {
		return New(fsys, opts...), nil
	}
	return d, err
}

func decode(data []byte) (*document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid JSON")
	}
	if dec.More() {
		return nil, errors.New(errors.CodeInvalidInput, "trailing data after JSON document")
	}

	if doc.Version != "" {
		ok, err := schema.IsCompatible(doc.Version)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid database version")
		}
		if !ok {
			return nil, errors.Newf(errors.CodeIncompatibleVersion,
				"database version %s is not compatible with %s", doc.Version, schema.SchemaVersion)
		}
	}

	for i, eq := range doc.Equivalences {
		if err := eq.validate(); err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid equivalence",
				map[string]interface{}{"index": i})
		}
	}
	for i, m := range doc.Migrations {
		if err := m.validate(); err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid migration",
				map[string]interface{}{"index": i})
		}
	}
	return &doc, nil
}
