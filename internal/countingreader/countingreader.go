/*
 * Copyright 2020 National Library of Norway.
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

// Package countingreader wraps an io.Reader and tracks the number of
// bytes that have passed through it, so a caller buffering reads through
// a bufio.Reader can still recover its true position in the underlying
// stream (position = bytes read from the counting reader minus bytes
// still sitting unread in the bufio.Reader's buffer).
package countingreader

import "sync/atomic"

// Reader counts the bytes read through it.
type Reader struct {
	src  interface{ Read(p []byte) (int, error) }
	n    int64
}

// New wraps r so that the number of bytes read through it can be
// recovered with N.
func New(r interface{ Read(p []byte) (int, error) }) *Reader {
	return &Reader{src: r}
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	atomic.AddInt64(&r.n, int64(n))
	return n, err
}

// N reports the number of bytes read through r so far.
func (r *Reader) N() int64 {
	return atomic.LoadInt64(&r.n)
}
