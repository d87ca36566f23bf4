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
	"errors"
	"fmt"
	"strings"
)

// ErrNoExporter is returned when a graphic has to be exported but no
// ImageExporter is configured.
var ErrNoExporter = errors.New("no image exporter configured")

// UnsupportedFormatError is returned when no provider can open the input format.
type UnsupportedFormatError struct {
	Extension string
	MIMEType  string
}

func (e *UnsupportedFormatError) Error() string {
	parts := []string{"unsupported format"}
	if e.Extension != "" {
		parts = append(parts, fmt.Sprintf("extension=%q", e.Extension))
	}
	if e.MIMEType != "" {
		parts = append(parts, fmt.Sprintf("mime=%q", e.MIMEType))
	}
	return strings.Join(parts, " ")
}

// FailedOpenAttempt records a provider that accepted the input but failed to open it.
type FailedOpenAttempt struct {
	Provider string
	Err      error
}

// OpenError is returned when every provider that accepted the input failed to open it.
type OpenError struct {
	Attempts []FailedOpenAttempt
}

func (e *OpenError) Error() string {
	if len(e.Attempts) == 0 {
		return "open document failed"
	}
	var b strings.Builder
	b.WriteString("open document failed after ")
	fmt.Fprintf(&b, "%d attempt(s):", len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Provider, a.Err)
	}
	return b.String()
}

func (e *OpenError) Unwrap() error {
	if len(e.Attempts) > 0 {
		return e.Attempts[len(e.Attempts)-1].Err
	}
	return nil
}

// InvariantError is returned when the builder meets a shape that the grouping
// pass should have merged away. It indicates a defect, not bad input.
type InvariantError struct {
	Slide     int
	Shape     int
	ShapeType string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("slide %d shape %d: %s should have been merged by the grouping pass", e.Slide, e.Shape, e.ShapeType)
}

// GroupingError is returned when the provider rejects grouping a page's
// composite-prone shapes.
type GroupingError struct {
	Slide int
	Err   error
}

func (e *GroupingError) Error() string {
	return fmt.Sprintf("slide %d: group shapes: %v", e.Slide, e.Err)
}

func (e *GroupingError) Unwrap() error {
	return e.Err
}

// ExportError is returned when the image exporter fails.
type ExportError struct {
	Slide int
	Shape int
	Path  string
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("slide %d shape %d: export %s: %v", e.Slide, e.Shape, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// RecordError is returned for serialized slide records that cannot be decoded
// or lack a field the renderer needs.
type RecordError struct {
	Slide  int
	Shape  int
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	var b strings.Builder
	b.WriteString("invalid slide record")
	if e.Slide >= 0 {
		fmt.Fprintf(&b, " (slide %d", e.Slide)
		if e.Shape > 0 {
			fmt.Fprintf(&b, ", shape %d", e.Shape)
		}
		b.WriteString(")")
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsInvariantViolation reports whether the error is an InvariantError.
func IsInvariantViolation(err error) bool {
	var target *InvariantError
	return errors.As(err, &target)
}
