package git

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrMalformedStatusRecord indicates a status record that does not match
// the "XY path" layout or carries a code outside the known set.
var ErrMalformedStatusRecord = errors.New("malformed status record")

// ErrTruncatedRenameEntry indicates a rename or copy record with no
// following destination record.
var ErrTruncatedRenameEntry = errors.New("truncated rename entry")

// StatusCode is one of the single-byte change codes git emits in
// porcelain status output.
type StatusCode byte

// Status codes. Each ChangeEntry carries one for the index and one for
// the working tree.
const (
	Unchanged   StatusCode = ' '
	Deleted     StatusCode = 'D'
	Modified    StatusCode = 'M'
	Added       StatusCode = 'A'
	Renamed     StatusCode = 'R'
	Copied      StatusCode = 'C'
	Unmerged    StatusCode = 'U'
	Unknown     StatusCode = '?'
	TypeChanged StatusCode = 'T'
)

// lookupStatusCode maps a raw byte onto the closed code set.
func lookupStatusCode(b byte) (StatusCode, bool) {
	switch c := StatusCode(b); c {
	case Unchanged, Deleted, Modified, Added, Renamed, Copied, Unmerged, Unknown, TypeChanged:
		return c, true
	default:
		return 0, false
	}
}

// Char returns the raw status byte as a one-character string.
func (c StatusCode) Char() string {
	return string(rune(c))
}

// String returns the code's name.
func (c StatusCode) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Renamed:
		return "renamed"
	case Copied:
		return "copied"
	case Unmerged:
		return "unmerged"
	case Unknown:
		return "untracked"
	case TypeChanged:
		return "type-changed"
	default:
		return fmt.Sprintf("StatusCode(%q)", byte(c))
	}
}

// pairsPath reports whether the code makes its record span two fields.
func (c StatusCode) pairsPath() bool {
	return c == Renamed || c == Copied
}

// ChangeEntry is one changed path from the status output.
// Destination is set exactly when either code is Renamed or Copied.
type ChangeEntry struct {
	Index       StatusCode
	Tree        StatusCode
	Source      string
	Destination string
}

// Code returns the two status letters, index first, as git prints them.
func (e ChangeEntry) Code() string {
	return e.Index.Char() + e.Tree.Char()
}

// Path returns the entry's current path. For a rename or copy git writes
// the new path in the first field, so this is Source in every case.
func (e ChangeEntry) Path() string {
	return e.Source
}

// OrigPath returns the path a rename or copy started from, which git
// writes in the second field. Empty for other entries.
func (e ChangeEntry) OrigPath() string {
	return e.Destination
}

// IsRenameOrCopy reports whether the entry spans a source and destination.
func (e ChangeEntry) IsRenameOrCopy() bool {
	return e.Index.pairsPath() || e.Tree.pairsPath()
}

// IsClean reports whether neither the index nor the tree has a change.
func (e ChangeEntry) IsClean() bool {
	return e.Index == Unchanged && e.Tree == Unchanged
}

// IsTreeClean reports whether the working tree side is unchanged.
func (e ChangeEntry) IsTreeClean() bool {
	return e.Tree == Unchanged
}

// String renders "src (X, Y)" or "src -> dst (X, Y)".
func (e ChangeEntry) String() string {
	if e.Destination == "" {
		return fmt.Sprintf("%s (%s, %s)", e.Source, e.Index.Char(), e.Tree.Char())
	}
	return fmt.Sprintf("%s -> %s (%s, %s)", e.Source, e.Destination, e.Index.Char(), e.Tree.Char())
}

// ParseError locates the record that stopped ParseStatus.
type ParseError struct {
	Index  int
	Record string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("status record %d %q: %v", e.Index, e.Record, e.Err)
}

// Unwrap returns ErrMalformedStatusRecord or ErrTruncatedRenameEntry.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// minRecordLen is two status bytes, the separator, and at least one path byte.
const minRecordLen = 4

// ParseStatus parses the output of "git status --porcelain -z".
//
// Records are NUL-terminated "XY path" fields. A rename or copy takes the
// following field as its destination path; that field is consumed by
// position and never inspected for a status prefix. Any malformed record
// aborts the parse and no entries are returned.
func ParseStatus(data []byte) ([]ChangeEntry, error) {
	records := splitRecords(data)
	entries := make([]ChangeEntry, 0, len(records))

	for i := 0; i < len(records); i++ {
		entry, err := parseRecord(records[i])
		if err != nil {
			return nil, &ParseError{Index: i, Record: string(records[i]), Err: err}
		}

		if entry.IsRenameOrCopy() {
			if i+1 == len(records) {
				return nil, &ParseError{Index: i, Record: string(records[i]), Err: ErrTruncatedRenameEntry}
			}
			i++
			entry.Destination = string(records[i])
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// splitRecords splits on NUL and drops empty fields.
func splitRecords(data []byte) [][]byte {
	var records [][]byte
	for field := range bytes.SplitSeq(data, []byte{0}) {
		if len(field) > 0 {
			records = append(records, field)
		}
	}
	return records
}

// parseRecord decodes a single "XY path" record.
func parseRecord(record []byte) (ChangeEntry, error) {
	if len(record) < minRecordLen || record[2] != ' ' {
		return ChangeEntry{}, ErrMalformedStatusRecord
	}

	index, ok := lookupStatusCode(record[0])
	if !ok {
		return ChangeEntry{}, ErrMalformedStatusRecord
	}
	tree, ok := lookupStatusCode(record[1])
	if !ok {
		return ChangeEntry{}, ErrMalformedStatusRecord
	}

	return ChangeEntry{
		Index:  index,
		Tree:   tree,
		Source: string(record[3:]),
	}, nil
}
