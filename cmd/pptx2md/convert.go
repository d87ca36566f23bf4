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
	"io"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert INPUT",
	Short: "Convert a presentation straight to Markdown",
	Long: `Convert runs extract and render in one process, without writing the
intermediate slide records. Graphics go to --image-dir (or image_dir from the
config file).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		imageDir, _ := cmd.Flags().GetString("image-dir")

		c := newConverter(imageDir)
		slides, err := c.Extract(args[0])
		if err != nil {
			return err
		}
		return writeOutput(output, func(w io.Writer) error {
			return c.Render(w, slides)
		})
	},
}

func init() {
	convertCmd.Flags().StringP("output", "o", "-", "output file (default: stdout)")
	convertCmd.Flags().String("image-dir", "", "directory for exported graphics (default: image_dir config, then ./images)")

	rootCmd.AddCommand(convertCmd)
}
