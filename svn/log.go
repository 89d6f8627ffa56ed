package svn

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/input-output-hk/forge-sync/revision"
)

// LogEntry is one <logentry> element of svn log --xml output.
type LogEntry struct {
	Revision string `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
	Message  string `xml:"msg"`
}

type logDocument struct {
	XMLName xml.Name   `xml:"log"`
	Entries []LogEntry `xml:"logentry"`
}

// ParseLog decodes svn log --xml output, newest entry first.
func ParseLog(r io.Reader) ([]LogEntry, error) {
	var doc logDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("svn: decode log: %w", err)
	}
	for i, e := range doc.Entries {
		if e.Revision == "" {
			return nil, fmt.Errorf("svn: log entry %d has no revision", i)
		}
	}
	return doc.Entries, nil
}

// ParseMetadata converts log entries, newest first, into metadata. Each entry's
// parent is the entry after it; the last entry has no parent.
func ParseMetadata(entries []LogEntry, repositoryName string) []revision.Metadata {
	out := make([]revision.Metadata, 0, len(entries))
	for i, e := range entries {
		var parents []revision.Revision
		if i+1 < len(entries) {
			parents = []revision.Revision{revision.New(entries[i+1].Revision, repositoryName)}
		}
		md := revision.Metadata{
			ID:          e.Revision,
			Author:      e.Author,
			Date:        e.Date,
			Description: e.Message,
			Parents:     parents,
		}
		if t, err := time.Parse(time.RFC3339Nano, e.Date); err == nil {
			md.NormalizedDate = &t
		}
		out = append(out, md)
	}
	return out
}
