/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ls implements the "ls" subcommand, listing one summary line
// per WARC record.
package ls

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/digitalarkiv/warcstream"
)

type conf struct {
	recordCount int
	fileName    string
	id          []string
}

// NewCommand returns the "ls" subcommand.
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List records from a WARC file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			sort.Strings(c.id)
			return runE(c)
		},
	}

	cmd.Flags().IntVarP(&c.recordCount, "record-count", "c", 0, "the maximum number of records to show (0 = all)")
	cmd.Flags().StringArrayVar(&c.id, "id", []string{}, "only show records with one of these WARC-Record-ID values")

	return cmd
}

func runE(c *conf) error {
	stream, err := warcstream.NewStreamFromFile(c.fileName)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.fileName, err)
	}
	p, err := warcstream.NewParser(stream)
	if err != nil {
		return err
	}

	count := 0
	for {
		rec, err := p.Next()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v, rec num: %v\n", err, count)
			break
		}
		if rec == nil {
			break
		}
		if len(c.id) > 0 && !contains(c.id, rec.RecordID()) {
			continue
		}
		count++

		printRecord(rec)

		if c.recordCount > 0 && count >= c.recordCount {
			break
		}
	}
	fmt.Fprintln(os.Stderr, "Count:", count)
	return nil
}

func printRecord(record *warcstream.Record) {
	targetURI := cropString(record.TargetURI(), 100)
	fmt.Printf("%9d %s %-9.9s %s\n", record.Start, record.RecordID(), record.Type(), targetURI)
}

func cropString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + strings.Repeat(".", 1)
}

func contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
