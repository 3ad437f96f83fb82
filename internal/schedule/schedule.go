// Package schedule reads the date-keyed service selections written by the
// planning tool and answers "which service is next" questions about them.
package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical key format used in selections.json (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// parseLayout also accepts day and month without zero padding ("7/7/2099").
const parseLayout = "2/1/2006"

// Placeholder is substituted for every missing or null field. A stored
// "none" and a missing field are indistinguishable to callers.
const Placeholder = "none"

// Recognized field names.
const (
	FieldSong1         = "song1"
	FieldSong2         = "song2"
	FieldSong3         = "song3"
	FieldStart         = "start"
	FieldEnd           = "end"
	FieldCommunion     = "communion"
	FieldSong1Path     = "song1path"
	FieldSong2Path     = "song2path"
	FieldSong3Path     = "song3path"
	FieldStartPath     = "startpath"
	FieldEndPath       = "endpath"
	FieldCommunionPath = "communionpath"
)

// CueFields are the six displayable cue slots, in display order.
var CueFields = []string{FieldSong1, FieldSong2, FieldSong3, FieldStart, FieldEnd, FieldCommunion}

// FieldNames lists all twelve recognized fields in their fixed order.
var FieldNames = []string{
	FieldSong1, FieldSong2, FieldSong3, FieldStart, FieldEnd, FieldCommunion,
	FieldSong1Path, FieldSong2Path, FieldSong3Path, FieldStartPath, FieldEndPath, FieldCommunionPath,
}

// PathField returns the "<cue>path" companion of a cue field.
func PathField(cue string) string {
	return cue + "path"
}

var (
	// ErrNotFound is returned when the schedule file does not exist.
	ErrNotFound = errors.New("schedule file not found")
	// ErrParse is returned when the schedule file is not a JSON object of objects.
	ErrParse = errors.New("schedule file malformed")
)

// Record is one service's raw fields. Null values are stored as nil.
type Record map[string]*string

// Fields is the total view of a record over FieldNames.
type Fields map[string]string

// Entry pairs a parsed date with its record.
type Entry struct {
	Key    string
	Date   time.Time
	Record Record
}

// Document is an immutable snapshot of selections.json.
type Document struct {
	entries []Entry // ascending by Date
	byKey   map[string]int
	skipped []string
}

// Empty returns a document with no services.
func Empty() *Document {
	return &Document{byKey: map[string]int{}}
}

// Load reads and parses the schedule at path. Keys that are not valid
// DD/MM/YYYY dates are left out of the document and reported by Skipped.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return Parse(data)
}

// Parse builds a Document from raw JSON.
func Parse(data []byte) (*Document, error) {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrParse)
	}

	doc := &Document{
		entries: make([]Entry, 0, len(raw)),
		byKey:   make(map[string]int, len(raw)),
	}
	for key, fields := range raw {
		date, err := ParseDate(key)
		if err != nil {
			doc.skipped = append(doc.skipped, key)
			continue
		}
		doc.entries = append(doc.entries, Entry{Key: key, Date: date, Record: decodeRecord(fields)})
	}
	sort.Slice(doc.entries, func(i, j int) bool {
		if doc.entries[i].Date.Equal(doc.entries[j].Date) {
			return doc.entries[i].Key < doc.entries[j].Key
		}
		return doc.entries[i].Date.Before(doc.entries[j].Date)
	})
	for i, e := range doc.entries {
		doc.byKey[e.Key] = i
	}
	sort.Strings(doc.skipped)
	return doc, nil
}

// ParseDate parses a DD/MM/YYYY key into a UTC midnight time.
func ParseDate(key string) (time.Time, error) {
	return time.ParseInLocation(parseLayout, strings.TrimSpace(key), time.UTC)
}

// FormatDate renders t as a DD/MM/YYYY key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Len returns the number of services with valid dates.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Skipped returns keys that could not be parsed as dates.
func (d *Document) Skipped() []string {
	if d == nil || len(d.skipped) == 0 {
		return nil
	}
	out := make([]string, len(d.skipped))
	copy(out, d.skipped)
	return out
}

// SortedDates returns all date keys ascending by calendar date.
func (d *Document) SortedDates() []string {
	if d == nil {
		return []string{}
	}
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Key
	}
	return out
}

// Has reports whether key is a service date in the document.
func (d *Document) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.byKey[key]
	return ok
}

// NearestUpcoming returns the earliest service on or after today. Only the
// calendar date of today is considered.
func (d *Document) NearestUpcoming(today time.Time) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	idx := sort.Search(len(d.entries), func(i int) bool {
		return !d.entries[i].Date.Before(day)
	})
	if idx == len(d.entries) {
		return Entry{}, false
	}
	return d.entries[idx], true
}

// Earliest returns the first service in calendar order.
func (d *Document) Earliest() (Entry, bool) {
	if d.Len() == 0 {
		return Entry{}, false
	}
	return d.entries[0], true
}

// Selection is the service chosen for display.
type Selection struct {
	Key string
	// Defaulted is set when nothing is upcoming and the earliest service
	// was chosen instead.
	Defaulted bool
}

// Select picks the nearest service on or after today, falling back to the
// earliest one. It returns false only for an empty document.
func (d *Document) Select(today time.Time) (Selection, bool) {
	if e, ok := d.NearestUpcoming(today); ok {
		return Selection{Key: e.Key}, true
	}
	if e, ok := d.Earliest(); ok {
		return Selection{Key: e.Key, Defaulted: true}, true
	}
	return Selection{}, false
}

// FieldsFor returns every recognized field for the service on key, using
// Placeholder for anything absent. Unknown keys yield all placeholders.
func (d *Document) FieldsFor(key string) Fields {
	rec := d.record(key)
	out := make(Fields, len(FieldNames))
	for _, name := range FieldNames {
		out[name] = Placeholder
		if v, ok := rec[name]; ok && v != nil {
			out[name] = *v
		}
	}
	return out
}

// PathFor returns the raw path value of field on key, or "" when absent.
func (d *Document) PathFor(key, field string) string {
	v, ok := d.record(key)[PathField(field)]
	if !ok || v == nil {
		return ""
	}
	return *v
}

func (d *Document) record(key string) Record {
	if d == nil {
		return nil
	}
	idx, ok := d.byKey[key]
	if !ok {
		return nil
	}
	return d.entries[idx].Record
}

func decodeRecord(fields map[string]json.RawMessage) Record {
	rec := make(Record, len(fields))
	for name, raw := range fields {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			rec[name] = nil
			continue
		}
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			s = string(trimmed)
		}
		rec[name] = &s
	}
	return rec
}

// LogSkipped emits one warning per unparsable key.
func (d *Document) LogSkipped(logger *slog.Logger, path string) {
	if logger == nil {
		return
	}
	for _, key := range d.Skipped() {
		logger.Warn("skipping schedule entry with invalid date", "path", path, "key", key, "want_format", "DD/MM/YYYY")
	}
}
