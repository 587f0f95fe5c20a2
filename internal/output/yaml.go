package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// yamlWriter streams each record as its own YAML document. Multiple
// records come out separated by "---".
type yamlWriter struct {
	enc   *yaml.Encoder
	wrote bool
}

func newYAMLWriter(w io.Writer) *yamlWriter {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &yamlWriter{enc: enc}
}

func (y *yamlWriter) Write(record any) error {
	y.wrote = true
	return y.enc.Encode(record)
}

func (y *yamlWriter) WriteAll(records []any) error {
	for _, record := range records {
		if err := y.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (y *yamlWriter) Flush() error { return nil }

func (y *yamlWriter) Close() error {
	// Encoder.Close panics if nothing was ever encoded.
	if !y.wrote {
		return nil
	}
	return y.enc.Close()
}
