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
	"fmt"
	"log/slog"
)

// GroupShapes merges every composite-prone shape of page (drawing primitives,
// tables, OLE objects, existing groups) into a single group and converts that
// group into an image surrogate. Pages without such shapes are left untouched.
//
// It must complete before any shape of the page is read for building, since
// grouping changes shape indices.
func GroupShapes(page Page, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var composite []RawShape
	for i := 0; i < page.Count(); i++ {
		shape, err := page.ShapeAt(i)
		if err != nil {
			return fmt.Errorf("shape %d: %w", i, err)
		}
		if KindOf(shape.ShapeType()).CompositeProne() {
			composite = append(composite, shape)
		}
	}

	if len(composite) == 0 {
		return nil
	}

	logger.Debug("grouping probably-drawing shapes", "count", len(composite))

	group, err := page.Group(composite)
	if err != nil {
		return err
	}
	if err := page.ConvertToMetafile(group); err != nil {
		return fmt.Errorf("convert group to metafile: %w", err)
	}
	return nil
}
