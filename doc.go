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

/*
Package warcstream parses WARC 1.0/1.1 archives (ISO 28500) and their
record-at-a-time gzipped form, producing a stream of structured records
with precise byte offsets into the underlying stream.

Two parsing strategies are available: StyleDelimiter, which locates
records by scanning for the WARC record terminator, and
StyleContentLength, which trusts the mandatory Content-Length header to
skip exactly over the content block. Both share a state-machine driver
that sequences header discovery, extraction, filtering, handler
invocation and yield.

Records can own a cached copy of their bytes, lazily re-read their bytes
from the underlying stream, or both. See ByteSource.

To parse an uncompressed WARC:

	p, err := warcstream.NewParser(stream, warcstream.WithSplitRecords(true))
	if err != nil {
		log.Fatal(err)
	}
	for {
		record, err := p.Next()
		if err != nil {
			log.Fatal(err)
		}
		if record == nil {
			break
		}
		fmt.Println(record.Start, record.End)
	}

To parse a record-at-a-time gzipped WARC, see GzipParser.
*/
package warcstream
