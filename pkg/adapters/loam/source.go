package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/strata/internal/compiler"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/ports"
)

// Source adapts a Loam repository of revision documents to ports.RevisionSource.
// Each document (markdown with front matter, YAML or JSON) defines one revision.
type Source struct {
	Repo   *loam.TypedRepository[RevisionMetadata]
	parser *compiler.Parser
}

var _ ports.RevisionSource = (*Source)(nil)

// New creates a new Loam revision source.
func New(repo *loam.TypedRepository[RevisionMetadata]) *Source {
	return &Source{
		Repo:   repo,
		parser: compiler.NewParser(),
	}
}

// Open initializes a read-only Loam repository at dir and wraps it in a Source.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across JSON and YAML documents.
	// Read-only mode keeps Loam from writing into the revisions directory.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[RevisionMetadata](repo)), nil
}

// Revisions lists and decodes every document in the repository.
func (s *Source) Revisions(ctx context.Context) ([]domain.Revision, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	revs := make([]domain.Revision, 0, len(docs))
	for _, doc := range docs {
		rev, err := s.decode(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("revision document %s: %w", doc.ID, err)
		}
		revs = append(revs, rev)
	}
	return revs, nil
}

func (s *Source) decode(docID string, meta RevisionMetadata, content string) (domain.Revision, error) {
	// Use the ID from metadata if available, otherwise the file name.
	id := meta.ID
	if id == "" {
		id = trimExtension(docID)
	}

	parent := meta.Parent
	if parent == "" {
		parent = meta.DownRevision
	}
	if meta.Parent != "" && meta.DownRevision != "" && meta.Parent != meta.DownRevision {
		return domain.Revision{}, fmt.Errorf("parent %q and down_revision %q disagree", meta.Parent, meta.DownRevision)
	}

	created, err := s.parser.Created(meta.Created)
	if err != nil {
		return domain.Revision{}, err
	}
	up, err := s.parser.Ops(meta.Up)
	if err != nil {
		return domain.Revision{}, fmt.Errorf("up: %w", err)
	}
	down, err := s.parser.Ops(meta.Down)
	if err != nil {
		return domain.Revision{}, fmt.Errorf("down: %w", err)
	}

	label := meta.Label
	if label == "" {
		label = meta.Message
	}

	return domain.Revision{
		ID:       id,
		ParentID: parent,
		Label:    s.parser.Label(label, content),
		Created:  created,
		Default:  meta.Default,
		Up:       up,
		Down:     down,
	}, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
