package output

import (
	"encoding/json"

	"github.com/unpackhq/unpack/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) FormatSimplify(report *SimplifyReport) (string, error) {
	if report == nil {
		return "", nil
	}
	return f.marshal(report)
}

func (f *JSONFormatter) FormatVerify(results []VerifyResult) (string, error) {
	if results == nil {
		results = []VerifyResult{}
	}
	return f.marshal(results)
}

func (f *JSONFormatter) FormatCache(entries []core.CachedSimplification) (string, error) {
	if entries == nil {
		entries = []core.CachedSimplification{}
	}
	return f.marshal(entries)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
