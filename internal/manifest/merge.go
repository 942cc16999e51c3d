package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"loom/internal/fileutil"
)

// Record is one merged manifest row: every field value for a single
// utterance ID, plus any derived fields.
type Record struct {
	UtteranceID string
	Fields      map[string]string
}

// MarshalJSON emits the utterance ID first followed by fields in sorted
// order so merge output is byte-stable across runs.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"utt_id":`)
	id, err := json.Marshal(r.UtteranceID)
	if err != nil {
		return nil, err
	}
	buf.Write(id)
	for _, field := range Keys(r.Fields) {
		buf.WriteByte(',')
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.Fields[field])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// KeySetMismatchError reports field files within one subset that
// disagree on utterance-ID membership.
type KeySetMismatchError struct {
	Subset string
	Counts map[string]int
	// Missing maps field file name to utterance IDs absent from it but
	// present in another field file. Capped per file for readability.
	Missing map[string][]string
}

func (e *KeySetMismatchError) Error() string {
	fields := make([]string, 0, len(e.Counts))
	for field := range e.Counts {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		part := fmt.Sprintf("%s=%d", field, e.Counts[field])
		if missing := e.Missing[field]; len(missing) > 0 {
			part += fmt.Sprintf(" (missing %s)", strings.Join(missing, ","))
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf("key set mismatch in subset %s: utterance counts %s", e.Subset, strings.Join(parts, " "))
}

const missingSampleLimit = 5

// SampleIDs sorts ids and caps them at the missing-sample limit used
// in key-set mismatch reports.
func SampleIDs(ids []string) []string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	if len(sorted) > missingSampleLimit {
		sorted = sorted[:missingSampleLimit]
	}
	return sorted
}

// Merge reads every field file in the subset directory, validates that
// all files share the exact same utterance-ID set, and combines them
// into one record per utterance, sorted by utterance ID. When dict is
// non-nil the derived output dimension is attached to each record as
// the odim field.
func Merge(subset Subset, dict *Dictionary) ([]Record, error) {
	fields, err := subset.FieldFiles()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("subset %s has no field files in %s", subset.Name, subset.Dir)
	}

	byField := make(map[string]map[string]string, len(fields))
	for _, field := range fields {
		entries, err := ReadFile(subset.FieldPath(field))
		if err != nil {
			return nil, err
		}
		byField[field] = entries
	}

	if err := validateKeySets(subset.Name, fields, byField); err != nil {
		return nil, err
	}

	ids := Keys(byField[fields[0]])
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		values := make(map[string]string, len(fields)+1)
		for _, field := range fields {
			values[field] = byField[field][id]
		}
		if dict != nil {
			values["odim"] = strconv.Itoa(dict.OutputDim())
		}
		records = append(records, Record{UtteranceID: id, Fields: values})
	}
	return records, nil
}

func validateKeySets(subset string, fields []string, byField map[string]map[string]string) error {
	union := make(map[string]struct{})
	for _, field := range fields {
		for id := range byField[field] {
			union[id] = struct{}{}
		}
	}

	mismatch := false
	counts := make(map[string]int, len(fields))
	missing := make(map[string][]string, len(fields))
	for _, field := range fields {
		entries := byField[field]
		counts[field] = len(entries)
		if len(entries) != len(union) {
			mismatch = true
			var absent []string
			for id := range union {
				if _, ok := entries[id]; !ok {
					absent = append(absent, id)
				}
			}
			missing[field] = SampleIDs(absent)
		}
	}
	if !mismatch {
		return nil
	}
	return &KeySetMismatchError{Subset: subset, Counts: counts, Missing: missing}
}

// WriteRecords persists merged records as line-delimited JSON using an
// atomic replace.
func WriteRecords(path string, records []Record) error {
	var buf bytes.Buffer
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", record.UtteranceID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
