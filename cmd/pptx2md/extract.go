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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nicholasgasior/pptx2md"
)

var extractCmd = &cobra.Command{
	Use:   "extract INPUT OUTPUT IMAGE_DIR",
	Short: "Write slide records for a presentation and export its graphics",
	Long: `Extract groups drawings and tables of every slide into a single graphic,
exports all graphics into IMAGE_DIR and writes one slide record per slide to
OUTPUT. The record format comes from --format, PPTX2MD_RECORD_FORMAT or the
record_format config key. Without any of them, OUTPUT ending in .json is
written as JSON and anything else as YAML. Use "-" for stdout.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output, imageDir := args[0], args[1], args[2]

		format, err := recordFormat(output)
		if err != nil {
			return err
		}

		slides, err := newConverter(imageDir).Extract(input)
		if err != nil {
			return err
		}

		if output == "-" {
			return pptx2md.EncodeSlides(os.Stdout, slides, format)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := pptx2md.EncodeSlides(f, slides, format); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

// recordFormat picks the format for output. A configured format wins over the
// output's extension.
func recordFormat(output string) (pptx2md.RecordFormat, error) {
	if viper.IsSet("record_format") || output == "-" {
		return pptx2md.ParseRecordFormat(viper.GetString("record_format"))
	}
	return pptx2md.FormatForPath(output), nil
}

func init() {
	extractCmd.Flags().String("format", "yaml", "record format: yaml or json")
	_ = viper.BindPFlag("record_format", extractCmd.Flags().Lookup("format"))

	rootCmd.AddCommand(extractCmd)
}
