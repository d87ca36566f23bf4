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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicholasgasior/pptx2md"
)

var renderCmd = &cobra.Command{
	Use:   "render INPUT OUTPUT",
	Short: "Render slide records as Markdown",
	Long: `Render reads slide records written by "extract" and writes Markdown.
INPUT ending in .json is read as JSON, anything else as YAML. Use "-" for
stdin or stdout.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]

		var in io.Reader = os.Stdin
		if input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open records: %w", err)
			}
			defer f.Close()
			in = f
		}

		slides, err := pptx2md.DecodeSlides(in, pptx2md.FormatForPath(input))
		if err != nil {
			return err
		}

		return writeOutput(output, func(w io.Writer) error {
			return pptx2md.NewRenderer(newLogger()).Render(w, slides)
		})
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

// writeOutput runs write against stdout for "-", or against a new file.
func writeOutput(output string, write func(io.Writer) error) error {
	if output == "-" || output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
