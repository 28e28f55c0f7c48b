// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpev

import (
	"strings"
	"testing"
)

func TestHdrMatch(t *testing.T) {
	cases := [...]struct {
		name string
		e    HdrT
	}{
		{"Content-Length", HdrCLen},
		{"Transfer-Encoding", HdrTrEncoding},
		{"Connection", HdrConnection},
		{"Upgrade", HdrUpgrade},
		{"Content-Lengt", HdrOther},
		{"Content-Lengths", HdrOther},
		{"Content-Type", HdrOther},
		{"Host", HdrOther},
		{"X-Connection", HdrOther},
		{"Upgrade-Insecure-Requests", HdrOther},
	}
	var m hdrMatch
	for _, c := range cases {
		// random case must not change the result
		name := randCase(c.name)
		m.reset()
		for i := 0; i < len(name); i++ {
			m.feed(name[i])
		}
		if ht := m.hdrType(); ht != c.e {
			t.Errorf("hdrMatch(%q) = %q, expected %q", name, ht, c.e)
		}
	}
}

// parse a single request with the given extra headers and return the
// parser (for flags inspection) and the recorded events
func parseWithHdrs(t *testing.T, hdrs string, desc string) (*Parser, *evRec) {
	var p Parser
	var rec evRec

	p.Init(ModeRequest)
	s := rec.settings()
	buf := unescapeCRLF("GET / HTTP/1.1\\r\n" + hdrs + "\\r\n")
	if n := execPieces(&p, s, buf, 4); n != len(buf) && !p.Upgrade() {
		t.Fatalf("%s: consumed %d of %d (err %q)",
			desc, n, len(buf), p.Error())
	}
	return &p, &rec
}

func TestHdrFraming(t *testing.T) {
	// Transfer-Encoding: the final token decides
	p, _ := parseWithHdrs(t, "Transfer-Encoding: chunked\\r\n", "te chunked")
	if p.MsgFlags()&FChunked == 0 {
		t.Errorf("te chunked: FChunked not set")
	}
	p, _ = parseWithHdrs(t, "Transfer-Encoding: gzip, chunked\\r\n",
		"te gzip,chunked")
	if p.MsgFlags()&FChunked == 0 {
		t.Errorf("te gzip,chunked: FChunked not set")
	}
	p, _ = parseWithHdrs(t, "Transfer-Encoding: chunked, gzip\\r\n",
		"te chunked,gzip")
	if p.MsgFlags()&FChunked != 0 {
		t.Errorf("te chunked,gzip: FChunked set for non final chunked")
	}
	p, _ = parseWithHdrs(t,
		"Transfer-Encoding: "+randCase("CHUNKED")+"\\r\n", "te case")
	if p.MsgFlags()&FChunked == 0 {
		t.Errorf("te case: FChunked not set for random case")
	}

	// Connection token lists
	p, _ = parseWithHdrs(t, "Connection: close\\r\n", "conn close")
	if p.MsgFlags()&FConnClose == 0 {
		t.Errorf("conn close: FConnClose not set")
	}
	p, _ = parseWithHdrs(t, "Connection: Keep-Alive\\r\n", "conn ka")
	if p.MsgFlags()&FConnKeepAlive == 0 {
		t.Errorf("conn ka: FConnKeepAlive not set")
	}
	p, _ = parseWithHdrs(t, "Connection: foo, keep-alive, bar\\r\n",
		"conn list")
	if p.MsgFlags()&FConnKeepAlive == 0 {
		t.Errorf("conn list: FConnKeepAlive not set")
	}
	if p.MsgFlags()&FConnClose != 0 {
		t.Errorf("conn list: unexpected FConnClose")
	}
	p, _ = parseWithHdrs(t, "Connection: closed\\r\n", "conn closed")
	if p.MsgFlags()&FConnClose != 0 {
		t.Errorf("conn closed: FConnClose set for 'closed'")
	}

	// Upgrade presence (the parser stops after the headers)
	p, _ = parseWithHdrs(t, "Upgrade: tls/1.2\\r\n", "upgrade")
	if p.MsgFlags()&FUpgrade == 0 || !p.Upgrade() {
		t.Errorf("upgrade: flag %v upgrade %v",
			p.MsgFlags()&FUpgrade != 0, p.Upgrade())
	}

	// recognized headers are tracked in HdrFlags
	p, _ = parseWithHdrs(t,
		"Content-Length: 0\\r\nConnection: close\\r\nHost: h\\r\n",
		"hdr flags")
	hf := p.HdrFlags()
	if !hf.Test(HdrCLen) || !hf.Test(HdrConnection) || !hf.Test(HdrOther) {
		t.Errorf("hdr flags: %b", hf)
	}
	if hf.Test(HdrTrEncoding) || hf.Test(HdrUpgrade) {
		t.Errorf("hdr flags: unexpected types set: %b", hf)
	}
}

func TestHdrStreaming(t *testing.T) {
	_, rec := parseWithHdrs(t,
		"Host: www.example.org\\r\n"+
			"Accept: text/html, application/json\\r\n"+
			"X-Empty-Ish: x\\r\n",
		"streaming")
	if len(rec.hdrs) != 3 {
		t.Fatalf("streaming: %d headers: %v", len(rec.hdrs), rec.hdrs)
	}
	if rec.get("host") != "www.example.org" {
		t.Errorf("streaming: host = %q", rec.get("host"))
	}
	if rec.get("accept") != "text/html, application/json" {
		t.Errorf("streaming: accept = %q", rec.get("accept"))
	}
}

func TestHdrObsFold(t *testing.T) {
	_, rec := parseWithHdrs(t,
		"Folded: part1\\r\n"+
			"\tpart2\\r\n"+
			" part3\\r\n",
		"obs-fold")
	if len(rec.hdrs) != 1 {
		t.Fatalf("obs-fold: %d headers: %v", len(rec.hdrs), rec.hdrs)
	}
	v := rec.hdrs[0].v
	// the line breaks are dropped, the fold whitespace is kept
	if v != "part1\tpart2 part3" {
		t.Errorf("obs-fold: value %q", v)
	}
}

func TestCLenValues(t *testing.T) {
	p, _ := parseWithHdrs(t, "Content-Length: 0000123\\r\n", "clen zeros")
	// body framing: the request will wait for 123 body bytes, so parse
	// headers only & check through the flags that the header was recognized
	if !p.HdrFlags().Test(HdrCLen) {
		t.Errorf("clen zeros: HdrCLen not seen")
	}

	// same Content-Length twice is allowed, different values are not
	var rec evRec
	var pp Parser
	pp.Init(ModeRequest)
	buf := unescapeCRLF("POST / HTTP/1.1\\r\n" +
		"Content-Length: 2\\r\nContent-Length: 2\\r\n\\r\nab")
	if n := pp.Execute(rec.settings(), buf); n != len(buf) {
		t.Errorf("clen dup same: consumed %d of %d (err %q)",
			n, len(buf), pp.Error())
	}
	if string(rec.body) != "ab" {
		t.Errorf("clen dup same: body %q", rec.body)
	}
}

func TestKeepAliveLaw(t *testing.T) {
	cases := [...]struct {
		ver  string
		conn string // Connection header value, "" for none
		e    bool
	}{
		{"1.1", "", true},
		{"1.1", "keep-alive", true},
		{"1.1", "close", false},
		{"1.1", "keep-alive, close", false},
		{"1.0", "", false},
		{"1.0", "keep-alive", true},
		{"1.0", "close", false},
	}
	for _, c := range cases {
		var p Parser
		var rec evRec
		hdr := ""
		if c.conn != "" {
			hdr = "Connection: " + c.conn + "\\r\n"
		}
		buf := unescapeCRLF("GET / HTTP/" + c.ver + "\\r\n" + hdr + "\\r\n")
		p.Init(ModeRequest)
		if n := p.Execute(rec.settings(), buf); n != len(buf) {
			t.Fatalf("keep-alive %s %q: consumed %d of %d (err %q)",
				c.ver, c.conn, n, len(buf), p.Error())
		}
		if p.ShouldKeepAlive() != c.e {
			t.Errorf("keep-alive %s %q = %v, expected %v",
				c.ver, c.conn, p.ShouldKeepAlive(), c.e)
		}
	}
}

func TestMaxHeaderSize(t *testing.T) {
	var p Parser
	var rec evRec

	big := "GET / HTTP/1.1\r\nPadding: " +
		strings.Repeat("a", MaxHeaderSize) + "\r\n\r\n"
	p.Init(ModeRequest)
	n := p.Execute(rec.settings(), []byte(big))
	if n >= len(big) {
		t.Fatalf("overlong header block consumed %d of %d", n, len(big))
	}
	if !p.Err() || p.Error() != ErrHdrTooLong {
		t.Errorf("overlong header block: error %q", p.Error())
	}
	// exactly at the bound must pass
	var p2 Parser
	pad := MaxHeaderSize - len("GET / HTTP/1.1\r\nPadding: \r\n\r\n")
	ok := "GET / HTTP/1.1\r\nPadding: " +
		strings.Repeat("a", pad) + "\r\n\r\n"
	p2.Init(ModeRequest)
	if n := p2.Execute(rec.settings(), []byte(ok)); n != len(ok) {
		t.Errorf("at-bound header block: consumed %d of %d (err %q)",
			n, len(ok), p2.Error())
	}
}

func TestHdrErrors(t *testing.T) {
	cases := [...]struct {
		hdr  string
		e    ErrorHdr
		desc string
	}{
		{"No Colon Line\\r\n", ErrHdrBadChar, "space inside field name"},
		{"X\x00Y: v\\r\n", ErrHdrBadChar, "NUL in field name"},
		{"X: a\x01b\\r\n", ErrHdrBadChar, "ctl char in value (strict)"},
		{"Content-Length: \\r\n", ErrHdrBadCLen, "empty content-length"},
		{"Content-Length: 99999999999999999999\\r\n", ErrHdrBadCLen,
			"content-length overflow"},
	}
	for _, c := range cases {
		var p Parser
		var rec evRec
		buf := unescapeCRLF("GET / HTTP/1.1\\r\n" + c.hdr + "\\r\n")
		p.Init(ModeRequest)
		n := p.Execute(rec.settings(), buf)
		if n >= len(buf) || !p.Err() || p.Error() != c.e {
			t.Errorf("%s: consumed %d/%d error %q, expected %q",
				c.desc, n, len(buf), p.Error(), c.e)
		}
	}
}
