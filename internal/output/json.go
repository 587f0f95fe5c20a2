package output

import (
	"encoding/json"
	"io"
)

// jsonWriter buffers records and emits them on Flush: a lone record is
// written as-is, several become an array, none writes nothing.
type jsonWriter struct {
	w       io.Writer
	cfg     writerConfig
	records []any
	flushed bool
}

func newJSONWriter(w io.Writer, cfg writerConfig) *jsonWriter {
	return &jsonWriter{w: w, cfg: cfg}
}

func (j *jsonWriter) Write(record any) error {
	j.records = append(j.records, record)
	return nil
}

func (j *jsonWriter) WriteAll(records []any) error {
	j.records = append(j.records, records...)
	return nil
}

func (j *jsonWriter) Flush() error {
	if j.flushed || len(j.records) == 0 {
		return nil
	}
	j.flushed = true

	var v any = j.records
	if len(j.records) == 1 {
		v = j.records[0]
	}

	enc := json.NewEncoder(j.w)
	if !j.cfg.compact {
		enc.SetIndent("", j.cfg.indent)
	}
	return enc.Encode(v)
}

func (j *jsonWriter) Close() error {
	return j.Flush()
}

// jsonlWriter streams one JSON document per line.
type jsonlWriter struct {
	enc *json.Encoder
}

func newJSONLWriter(w io.Writer) *jsonlWriter {
	return &jsonlWriter{enc: json.NewEncoder(w)}
}

func (j *jsonlWriter) Write(record any) error {
	return j.enc.Encode(record)
}

func (j *jsonlWriter) WriteAll(records []any) error {
	for _, record := range records {
		if err := j.enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}

func (j *jsonlWriter) Flush() error { return nil }
func (j *jsonlWriter) Close() error { return nil }
