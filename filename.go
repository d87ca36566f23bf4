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
	"strings"
	"unicode"
)

const mimeSVG = "image/svg+xml"

// PlausibleExtension returns the trailing run of letters of s, which for most
// MIME types is a usable file extension ("image/png" -> "png"). It returns ""
// when s does not end in a letter.
func PlausibleExtension(s string) string {
	runes := []rune(s)
	i := len(runes)
	for i > 0 && unicode.IsLetter(runes[i-1]) {
		i--
	}
	return string(runes[i:])
}

// ImageFilename returns the base filename for the graphic of the given 1-based
// slide and shape numbers. SVG images get ".svg" rather than the "xml" the
// MIME type's trailing run would give.
func ImageFilename(slide, shape int, mimeType string) string {
	base := fmt.Sprintf("graphic-s%03d-g%03d", slide, shape)
	if strings.EqualFold(mimeType, mimeSVG) {
		return base + ".svg"
	}
	if ext := PlausibleExtension(mimeType); ext != "" {
		return base + "." + ext
	}
	return base
}

// isMetafile reports whether the MIME type names a vector metafile format
// that most Markdown viewers cannot display.
func isMetafile(mimeType string) bool {
	m := strings.ToLower(mimeType)
	return strings.Contains(m, "wmf") || strings.Contains(m, "emf")
}
