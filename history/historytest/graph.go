// Package historytest provides an in-memory revision graph implementing
// history.Source for tests.
package historytest

import (
	"context"
	"fmt"

	"github.com/input-output-hk/forge-sync/errors"
	"github.com/input-output-hk/forge-sync/history"
	"github.com/input-output-hk/forge-sync/revision"
)

// Graph is an in-memory revision DAG of one repository.
// The zero value is not usable; call NewGraph.
type Graph struct {
	name     string
	nodes    map[string]*revision.Metadata
	branches map[string]string
	head     string
	failures map[string]error

	// MetadataCalls counts Metadata lookups per revision id.
	MetadataCalls map[string]int
}

// NewGraph returns an empty graph for repository name.
func NewGraph(name string) *Graph {
	return &Graph{
		name:          name,
		nodes:         make(map[string]*revision.Metadata),
		branches:      make(map[string]string),
		failures:      make(map[string]error),
		MetadataCalls: make(map[string]int),
	}
}

// Add declares revision id with the given parents, in order. The most
// recently added revision becomes the default head. It returns g for chaining.
func (g *Graph) Add(id string, parents ...string) *Graph {
	ps := make([]revision.Revision, len(parents))
	for i, p := range parents {
		ps[i] = revision.New(p, g.name)
	}
	g.nodes[id] = &revision.Metadata{
		ID:          id,
		Author:      "author",
		Date:        "date",
		Description: fmt.Sprintf("description for %s", id),
		Parents:     ps,
	}
	g.head = id
	return g
}

// Describe sets the author and description of id.
func (g *Graph) Describe(id, author, description string) *Graph {
	if md, ok := g.nodes[id]; ok {
		md.Author = author
		md.Description = description
	}
	return g
}

// Branch points branch at id.
func (g *Graph) Branch(branch, id string) *Graph {
	g.branches[branch] = id
	return g
}

// Head sets the default head.
func (g *Graph) Head(id string) *Graph {
	g.head = id
	return g
}

// Fail makes Metadata of id return err.
func (g *Graph) Fail(id string, err error) *Graph {
	g.failures[id] = err
	return g
}

// Rev returns the revision id of this graph's repository.
func (g *Graph) Rev(id string) revision.Revision {
	return revision.New(id, g.name)
}

// Revs returns the revisions ids of this graph's repository.
func (g *Graph) Revs(ids ...string) []revision.Revision {
	out := make([]revision.Revision, len(ids))
	for i, id := range ids {
		out[i] = g.Rev(id)
	}
	return out
}

// RepositoryName implements history.Source.
func (g *Graph) RepositoryName() string {
	return g.name
}

// HighestRevision implements history.Source.
func (g *Graph) HighestRevision(_ context.Context, revID string) (revision.Revision, error) {
	switch {
	case len(g.nodes) == 0:
		return revision.Revision{}, errors.Wrapf(history.ErrNoHead, errors.CodeNotFound, "repository %s is empty", g.name)
	case revID == "":
		return g.Rev(g.head), nil
	case g.branches[revID] != "":
		return g.Rev(g.branches[revID]), nil
	case g.nodes[revID] != nil:
		return g.Rev(revID), nil
	default:
		return revision.Revision{}, errors.Newf(errors.CodeNotFound, "unknown revision %q in %s", revID, g.name)
	}
}

// Metadata implements history.Source.
func (g *Graph) Metadata(_ context.Context, rev revision.Revision) (*revision.Metadata, error) {
	g.MetadataCalls[rev.RevID]++

	if rev.RepositoryName != g.name {
		return nil, errors.Newf(errors.CodeInvalidInput, "revision %s is not in %s", rev, g.name)
	}
	if err, ok := g.failures[rev.RevID]; ok {
		return nil, err
	}
	md, ok := g.nodes[rev.RevID]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "unknown revision %s", rev)
	}
	out := *md
	out.Parents = append([]revision.Revision(nil), md.Parents...)
	return &out, nil
}
