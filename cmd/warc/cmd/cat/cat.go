/*
 * Copyright 2019 National Library of Norway.
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

// Package cat implements the "cat" subcommand, printing a summary line
// and either the content block or, with --header, the header block of
// each WARC record to stdout.
package cat

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/digitalarkiv/warcstream"
)

type conf struct {
	recordCount int
	header      bool
	strict      bool
	contentLength bool
	fileName    string
	id          []string
}

// NewCommand returns the "cat" subcommand.
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "cat",
		Short: "Print the records of a WARC file",
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
	cmd.Flags().BoolVar(&c.header, "header", false, "show only the header block")
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "exit with the parse error instead of logging it and printing the count")
	cmd.Flags().BoolVar(&c.contentLength, "check-content-length", false, "verify each record's Content-Length header")
	cmd.Flags().StringArrayVar(&c.id, "id", []string{}, "only show records with one of these WARC-Record-ID values")

	return cmd
}

func runE(c *conf) error {
	stream, err := warcstream.NewStreamFromFile(c.fileName)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.fileName, err)
	}

	var opts []warcstream.Option
	if c.contentLength {
		opts = append(opts, warcstream.WithCheckContentLengths(true))
	}
	p, err := warcstream.NewParser(stream, opts...)
	if err != nil {
		return err
	}

	count := 0
	for {
		rec, err := p.Next()
		if err != nil {
			logrus.WithError(err).WithField("record", count).Error("parse error")
			if c.strict {
				return err
			}
			break
		}
		if rec == nil {
			break
		}
		if len(c.id) > 0 && !contains(c.id, rec.RecordID()) {
			continue
		}
		count++

		printRecord(c, rec)

		if c.recordCount > 0 && count >= c.recordCount {
			break
		}
	}
	if !p.Warnings.Empty() {
		fmt.Fprintln(os.Stderr, p.Warnings.String())
	}
	fmt.Fprintln(os.Stderr, "Count:", count)
	return nil
}

func printRecord(c *conf, record *warcstream.Record) {
	bold := color.New(color.Bold)
	bold.Printf("[%d,%d) %s %s %s\n", record.Start, record.End, record.RecordID(), record.Type(), record.TargetURI())

	if c.header {
		header, err := record.Header.Bytes()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		os.Stdout.Write(header)
		fmt.Println()
		return
	}

	content, err := record.Content.Bytes()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	os.Stdout.Write(content)
	fmt.Println()
}

func contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
