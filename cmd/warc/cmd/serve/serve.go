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

// Package serve implements an interactive terminal browser over a
// parsed WARC file's records.
package serve

import (
	"errors"
	"fmt"
	"log"

	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/digitalarkiv/warcstream"
)

type conf struct {
	fileName string
	strict   bool
}

// NewCommand returns the "browse" subcommand: an interactive gocui
// terminal view over a WARC file's records.
func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactively browse the records in a WARC file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			return runE(c)
		},
	}
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "exit with the parse error instead of browsing the records parsed before it")
	return cmd
}

type browser struct {
	records  []*warcstream.Record
	selected int
}

func runE(c *conf) error {
	stream, err := warcstream.NewStreamFromFile(c.fileName)
	if err != nil {
		return fmt.Errorf("opening %s: %w", c.fileName, err)
	}
	opts := []warcstream.Option{
		warcstream.WithCheckContentLengths(true),
		warcstream.WithCollectRecords(true),
	}
	p, err := warcstream.NewParser(stream, opts...)
	if err != nil {
		return err
	}
	records, err := p.Parse(true)
	if err != nil && !c.strict {
		logrus.WithError(err).Warn("stopped parsing early")
	} else if err != nil {
		return err
	}
	if !p.Warnings.Empty() {
		logrus.Debug(p.Warnings.String())
	}

	b := &browser{records: records}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return err
	}
	defer g.Close()

	g.SetManagerFunc(b.layout)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("list", gocui.KeyArrowDown, gocui.ModNone, b.cursorDown); err != nil {
		return err
	}
	if err := g.SetKeybinding("list", gocui.KeyArrowUp, gocui.ModNone, b.cursorUp); err != nil {
		return err
	}

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Println(err)
		return err
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

func (b *browser) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	listWidth := maxX / 3

	if v, err := g.SetView("list", 0, 0, listWidth, maxY-1); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "records"
		v.Highlight = true
		v.SelBgColor = gocui.ColorGreen
		v.SelFgColor = gocui.ColorBlack
		for i, r := range b.records {
			fmt.Fprintf(v, "%4d %-9s %s\n", i, r.Type(), r.TargetURI())
		}
		if _, err := g.SetCurrentView("list"); err != nil {
			return err
		}
	}

	if v, err := g.SetView("detail", listWidth+1, 0, maxX-1, maxY-1); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "record"
		v.Wrap = true
		b.renderDetail(v)
	}
	return nil
}

func (b *browser) renderDetail(v *gocui.View) {
	v.Clear()
	if len(b.records) == 0 {
		fmt.Fprintln(v, "no records")
		return
	}
	r := b.records[b.selected]
	fmt.Fprintf(v, "WARC-Type: %s\n", r.Type())
	fmt.Fprintf(v, "WARC-Record-ID: %s\n", r.RecordID())
	fmt.Fprintf(v, "WARC-Target-URI: %s\n", r.TargetURI())
	fmt.Fprintf(v, "Offset: [%d,%d)\n", r.Start, r.End)
	if r.ContentLengthCheckResult != nil {
		fmt.Fprintf(v, "Content-Length check: %v\n", *r.ContentLengthCheckResult)
	}
	fmt.Fprintln(v, "--")
	content, err := r.Content.Bytes()
	if err != nil {
		fmt.Fprintf(v, "error reading content: %v\n", err)
		return
	}
	if len(content) > 2048 {
		content = content[:2048]
	}
	v.Write(content)
}

func (b *browser) cursorDown(g *gocui.Gui, v *gocui.View) error {
	if b.selected < len(b.records)-1 {
		b.selected++
		v.MoveCursor(0, 1, false)
	}
	return b.refreshDetail(g)
}

func (b *browser) cursorUp(g *gocui.Gui, v *gocui.View) error {
	if b.selected > 0 {
		b.selected--
		v.MoveCursor(0, -1, false)
	}
	return b.refreshDetail(g)
}

func (b *browser) refreshDetail(g *gocui.Gui) error {
	v, err := g.View("detail")
	if err != nil {
		return err
	}
	b.renderDetail(v)
	return nil
}
