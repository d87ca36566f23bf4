// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package pptx2md

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// RecordFormat selects the serialization of the intermediate slide records.
type RecordFormat string

const (
	FormatYAML RecordFormat = "yaml"
	FormatJSON RecordFormat = "json"
)

// FormatForPath picks the record format from a file extension. Anything other
// than .json is YAML.
func FormatForPath(path string) RecordFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ParseRecordFormat parses a format name as used in configuration.
func ParseRecordFormat(s string) (RecordFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml", "":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown record format %q: use yaml or json", s)
}

// EncodeSlides writes slides to w in the given format.
func EncodeSlides(w io.Writer, slides []SlideRecord, format RecordFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(slides); err != nil {
			return fmt.Errorf("encode slide records: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(slides); err != nil {
			return fmt.Errorf("encode slide records: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode slide records: %w", err)
		}
		return nil
	}
	return fmt.Errorf("encode slide records: unknown format %q", format)
}

// DecodeSlides reads slides from r. Unknown fields and shapes without a type
// are rejected with a *RecordError.
func DecodeSlides(r io.Reader, format RecordFormat) ([]SlideRecord, error) {
	var slides []SlideRecord
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&slides); err != nil {
			return nil, decodeError(err)
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&slides); err != nil {
			return nil, decodeError(err)
		}
	default:
		return nil, fmt.Errorf("decode slide records: unknown format %q", format)
	}

	if err := validateSlides(slides); err != nil {
		return nil, err
	}
	return slides, nil
}

func decodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return &RecordError{Slide: -1, Reason: "empty input"}
	}
	return &RecordError{Slide: -1, Reason: "decode", Err: err}
}

func validateSlides(slides []SlideRecord) error {
	for i, slide := range slides {
		if slide.SlideNum < 0 {
			return &RecordError{Slide: i, Reason: fmt.Sprintf("negative slideNum %d", slide.SlideNum)}
		}
		for j, shape := range slide.Shapes {
			if shape.ShapeType == "" {
				return &RecordError{Slide: slide.SlideNum, Shape: j + 1, Reason: "missing shapeType"}
			}
		}
	}
	return nil
}
