// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpev

import (
	"github.com/intuitivelabs/bytescase"
)

// HdrT is used to hold the header type as a numeric constant.
type HdrT uint8

// HdrFlags packs several header values into bit flags.
type HdrFlags uint8

// Reset initializes a HdrFlags.
func (f *HdrFlags) Reset() {
	*f = 0
}

// Set sets the header flag corresponding to the passed header type.
func (f *HdrFlags) Set(Type HdrT) {
	*f |= 1 << Type
}

// Clear resets the header flag corresponding to the passed header type.
func (f *HdrFlags) Clear(Type HdrT) {
	*f &^= 1 << Type // equiv to & ^(...)
}

// Test returns true if the flag corresponding to the passed header type
// is set.
func (f HdrFlags) Test(Type HdrT) bool {
	return (f & (1 << Type)) != 0
}

// HdrT header types constants.
// Only the message framing relevant headers are recognized, everything
// else is streamed to the caller as HdrOther.
const (
	HdrNone HdrT = iota
	HdrCLen
	HdrTrEncoding
	HdrConnection
	HdrUpgrade // http 1.1 _only_ (not allowed on 2.0)
	HdrOther   // generic, not recognized header
)

// HdrFlags constants for each header type.
const (
	HdrCLenF       HdrFlags = 1 << HdrCLen
	HdrTrEncodingF HdrFlags = 1 << HdrTrEncoding
	HdrConnectionF HdrFlags = 1 << HdrConnection
	HdrUpgradeF    HdrFlags = 1 << HdrUpgrade
	HdrOtherF      HdrFlags = 1 << HdrOther
)

// pretty names for debugging and error reporting
var hdrTStr = [...]string{
	HdrNone:       "nil",
	HdrCLen:       "Content-Length",
	HdrTrEncoding: "Transfer-Encoding",
	HdrConnection: "Connection",
	HdrUpgrade:    "Upgrade",
	HdrOther:      "Generic",
}

// String implements the Stringer interface.
func (t HdrT) String() string {
	if int(t) >= len(hdrTStr) {
		return "invalid"
	}
	return hdrTStr[t]
}

// associates header name (as byte slice) to HdrT header type
// (always use lowercase)
var hdrName2Type = [...]struct {
	n []byte
	t HdrT
}{
	{n: []byte("content-length"), t: HdrCLen},
	{n: []byte("transfer-encoding"), t: HdrTrEncoding},
	{n: []byte("connection"), t: HdrConnection},
	{n: []byte("upgrade"), t: HdrUpgrade},
}

// hdrMatch incrementally matches a header field name against the
// recognized header set, one byte at a time (the name is never available
// as a whole: field name bytes are streamed out to the caller as they
// are parsed).
type hdrMatch struct {
	cand uint8 // bitset of still-possible hdrName2Type entries
	pos  OffsT // number of name bytes fed so far
}

// reset prepares the matcher for a new field name.
func (m *hdrMatch) reset() {
	m.cand = 1<<uint(len(hdrName2Type)) - 1
	m.pos = 0
}

// feed advances the match with one field name byte (case-insensitive).
func (m *hdrMatch) feed(c byte) {
	if m.cand != 0 {
		lc := bytescase.ByteToLower(c)
		for k := 0; k < len(hdrName2Type); k++ {
			bit := uint8(1) << uint(k)
			if m.cand&bit == 0 {
				continue
			}
			n := hdrName2Type[k].n
			if int(m.pos) >= len(n) || n[m.pos] != lc {
				m.cand &^= bit
			}
		}
	}
	m.pos++
}

// hdrType returns the header type for the complete fed name.
func (m *hdrMatch) hdrType() HdrT {
	for k := 0; k < len(hdrName2Type); k++ {
		if m.cand&(1<<uint(k)) != 0 &&
			OffsT(len(hdrName2Type[k].n)) == m.pos {
			return hdrName2Type[k].t
		}
	}
	return HdrOther
}

// tokWord associates a known header value token with the message flags
// it implies.
type tokWord struct {
	n []byte
	f MsgFlags
}

// recognized Connection header tokens
var connWords = [...]tokWord{
	{n: []byte("keep-alive"), f: FConnKeepAlive},
	{n: []byte("close"), f: FConnClose},
	{n: []byte("upgrade"), f: FUpgrade},
}

// recognized Transfer-Encoding token (only the chunked coding matters
// for framing; other codings pass through unclassified)
var teWords = [...]tokWord{
	{n: []byte("chunked"), f: FChunked},
}

// tokMatch states
const (
	twInit uint8 = iota // before the token
	twTok               // inside the token
	twEnd               // whitespace after the token
	twBad               // token cannot match (or garbage after it)
)

// tokMatch incrementally matches one element of a comma separated header
// value list against a small word set, one byte at a time.
type tokMatch struct {
	state uint8
	cand  uint8 // bitset of still-possible words
	pos   OffsT // number of token bytes fed so far
}

// reset prepares the matcher for the next list element.
func (m *tokMatch) reset(nwords int) {
	m.state = twInit
	m.cand = 1<<uint(nwords) - 1
	m.pos = 0
}

// feed advances the match with one header value byte.
// On ',' the current token is finalized and its flags (or 0) returned.
func (m *tokMatch) feed(c byte, words []tokWord) MsgFlags {
	switch c {
	case ',':
		f := m.matched(words)
		m.reset(len(words))
		return f
	case ' ', '\t':
		if m.state == twTok {
			m.state = twEnd
		}
		return 0
	}
	switch m.state {
	case twInit:
		m.state = twTok
		fallthrough
	case twTok:
		lc := bytescase.ByteToLower(c)
		for k := 0; k < len(words); k++ {
			bit := uint8(1) << uint(k)
			if m.cand&bit == 0 {
				continue
			}
			if int(m.pos) >= len(words[k].n) || words[k].n[m.pos] != lc {
				m.cand &^= bit
			}
		}
		m.pos++
	case twEnd:
		// token bytes after whitespace without a separating ','
		m.state = twBad
	}
	return 0
}

// matched returns the flags of the word fully matched by the current
// token (0 if none).
func (m *tokMatch) matched(words []tokWord) MsgFlags {
	if m.state != twTok && m.state != twEnd {
		return 0
	}
	for k := 0; k < len(words); k++ {
		if m.cand&(1<<uint(k)) != 0 &&
			OffsT(len(words[k].n)) == m.pos {
			return words[k].f
		}
	}
	return 0
}

// hdrNameDone finalizes the streamed field name: resolves the header
// type and prepares the value sub-state.
// An Upgrade header sets its flag on presence alone, the value does not
// matter for framing.
func (p *Parser) hdrNameDone() {
	p.hType = p.hMatch.hdrType()
	if p.flags&FTrailing != 0 {
		// trailer headers never touch the framing state
		p.hType = HdrOther
		return
	}
	p.hdrFlags.Set(p.hType)
	switch p.hType {
	case HdrUpgrade:
		p.flags |= FUpgrade
	case HdrCLen:
		p.hvClen = 0
		p.hvDigits = false
	case HdrTrEncoding:
		p.hTok.reset(len(teWords))
	case HdrConnection:
		p.hTok.reset(len(connWords))
	}
}

// hdrValFeed advances the framing value sub-state with one value byte.
// Folded continuation lines feed a single synthetic ' ' before their
// first byte so that token matchers see the separation.
func (p *Parser) hdrValFeed(c byte) ErrorHdr {
	switch p.hType {
	case HdrCLen:
		if !isDigit(c) {
			return ErrHdrBadCLen
		}
		if p.hvClen > (maxContentLength-int64(c-'0'))/10 {
			return ErrHdrBadCLen
		}
		p.hvClen = p.hvClen*10 + int64(c-'0')
		p.hvDigits = true
	case HdrTrEncoding:
		// only the final token decides the chunked framing; flags
		// returned on intermediate ',' boundaries are ignored
		p.hTok.feed(c, teWords[:])
	case HdrConnection:
		p.flags |= p.hTok.feed(c, connWords[:])
	}
	return ErrHdrOk
}

// hdrValDone finalizes a completely parsed header value (called only
// when it is known that no folded continuation follows) and applies the
// framing rules.
func (p *Parser) hdrValDone() ErrorHdr {
	switch p.hType {
	case HdrCLen:
		if !p.hvDigits {
			return ErrHdrBadCLen
		}
		if p.contentLength >= 0 && p.contentLength != p.hvClen {
			// multiple Content-Length headers with different values
			return ErrHdrBadCLen
		}
		p.contentLength = p.hvClen
	case HdrTrEncoding:
		if p.hTok.matched(teWords[:]) == FChunked {
			p.flags |= FChunked
		} else {
			// a later Transfer-Encoding header ending in a different
			// coding overrides a previous chunked one
			p.flags &^= FChunked
		}
	case HdrConnection:
		p.flags |= p.hTok.matched(connWords[:])
	}
	p.hType = HdrNone
	return ErrHdrOk
}
