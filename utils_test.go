// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Test utils

package httpev

import (
	"math/rand"

	"github.com/intuitivelabs/bytescase"
)

// unescapeCRLF replaces the literal `\r` and `\n` escapes in a test
// message (written as a raw string for readability) with the real bytes.
func unescapeCRLF(s string) []byte {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'r':
				b = append(b, '\r')
				i++
				continue
			case 'n':
				b = append(b, '\n')
				i++
				continue
			}
		}
		b = append(b, s[i])
	}
	return b
}

// randomize case in a string
func randCase(s string) string {
	r := make([]byte, len(s))
	for i, b := range []byte(s) {
		switch rand.Intn(3) {
		case 0:
			r[i] = bytescase.ByteToLower(b)
		case 1:
			r[i] = bytescase.ByteToUpper(b)
		default:
			r[i] = b
		}
	}
	return string(r)
}

// hdrPair is one reassembled header (name and value callback payloads
// concatenated).
type hdrPair struct {
	n, v string
}

// evRec records the event stream emitted by a parser, reassembling the
// spans split over multiple callbacks.
type evRec struct {
	begins   int
	hdrsDone int
	done     int

	path, query, url, frag, body []byte
	hdrs                         []hdrPair
	inVal                        bool

	hcRet    int  // value returned by OnHeadersComplete
	kaAtHdrs bool // ShouldKeepAlive() sampled at headers complete
	rejectAt string
}

// reset clears the recorded events.
func (r *evRec) reset() {
	*r = evRec{hcRet: r.hcRet, rejectAt: r.rejectAt}
}

// get returns the recorded header value for a name ("" if missing).
func (r *evRec) get(name string) string {
	for _, h := range r.hdrs {
		if bytescase.CmpEq([]byte(h.n), []byte(name)) {
			return h.v
		}
	}
	return ""
}

// settings returns a Settings recording every event into r.
// rejectAt names an event that should return non-zero (callback
// rejection tests), empty for none.
func (r *evRec) settings() *Settings {
	rej := func(ev string) int {
		if r.rejectAt == ev {
			return -1
		}
		return 0
	}
	return &Settings{
		OnMessageBegin: func(p *Parser) int {
			r.begins++
			return rej("begin")
		},
		OnPath: func(p *Parser, d []byte) int {
			r.path = append(r.path, d...)
			return rej("path")
		},
		OnQueryString: func(p *Parser, d []byte) int {
			r.query = append(r.query, d...)
			return rej("query")
		},
		OnURL: func(p *Parser, d []byte) int {
			r.url = append(r.url, d...)
			return rej("url")
		},
		OnFragment: func(p *Parser, d []byte) int {
			r.frag = append(r.frag, d...)
			return rej("fragment")
		},
		OnHeaderField: func(p *Parser, d []byte) int {
			if r.inVal || len(r.hdrs) == 0 {
				r.hdrs = append(r.hdrs, hdrPair{})
				r.inVal = false
			}
			r.hdrs[len(r.hdrs)-1].n += string(d)
			return rej("field")
		},
		OnHeaderValue: func(p *Parser, d []byte) int {
			if !r.inVal {
				r.inVal = true
			}
			r.hdrs[len(r.hdrs)-1].v += string(d)
			return rej("value")
		},
		OnHeadersComplete: func(p *Parser) int {
			r.hdrsDone++
			r.kaAtHdrs = p.ShouldKeepAlive()
			if r.rejectAt == "hdrs" {
				return -1
			}
			return r.hcRet
		},
		OnBody: func(p *Parser, d []byte) int {
			r.body = append(r.body, d...)
			return rej("body")
		},
		OnMessageComplete: func(p *Parser) int {
			r.done++
			return rej("done")
		},
	}
}

// execPieces feeds buf to the parser in up to n random sized pieces,
// returning the total consumed count. It stops early if a call does not
// consume its whole piece (error or upgrade exit).
func execPieces(p *Parser, s *Settings, buf []byte, n int) int {
	total := 0
	offs := 0
	for k := 0; k < n-1 && offs < len(buf); k++ {
		// at least 1 byte: a zero length slice would signal EOF
		l := 1 + rand.Intn(len(buf)-offs)
		m := p.Execute(s, buf[offs:offs+l])
		total += m
		if m != l || p.Upgrade() {
			return total
		}
		offs += l
	}
	if offs == len(buf) {
		// nothing left; an empty slice would signal EOF
		return total
	}
	m := p.Execute(s, buf[offs:])
	return total + m
}

// execBytewise feeds buf one byte at a time.
func execBytewise(p *Parser, s *Settings, buf []byte) int {
	total := 0
	for i := 0; i < len(buf); i++ {
		m := p.Execute(s, buf[i:i+1])
		total += m
		if m != 1 || p.Upgrade() {
			return total
		}
	}
	return total
}
