// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpev

// Mode selects what the parser expects on the wire.
type Mode uint8

// parser modes
const (
	ModeEither   Mode = iota // decide on the first bytes (see Init)
	ModeRequest              // server side: parse requests
	ModeResponse             // client side: parse responses
)

// MsgFlags packs the framing relevant properties of the current message.
type MsgFlags uint8

// message flag values, set while finalizing header values
const (
	FChunked MsgFlags = 1 << iota
	FConnKeepAlive
	FConnClose
	FTrailing // inside the trailer part of a chunked body
	FUpgrade
)

// MaxHeaderSize is the hard limit on the total byte count of the
// header phase of a message (first line included). Exceeding it is a
// fatal parse error.
const MaxHeaderSize = 80 * 1024

// Cb is the type for the point event callbacks.
// A non zero return value stops the parser (see Execute); as the only
// exception OnHeadersComplete may return 1, meaning the message has no
// body (e.g. a response to a HEAD request).
type Cb func(p *Parser) int

// DataCb is the type for the data event callbacks.
// data is a sub-slice of the slice currently passed to Execute and must
// not be retained after Execute returns: a single logical field may be
// reported over several calls (the concatenation of all the callback
// payloads for a field yields the complete value).
// A non zero return value stops the parser.
type DataCb func(p *Parser, data []byte) int

// Settings holds the event callbacks driven by Execute.
// Nil callbacks are skipped; a missing callback never changes how the
// input is parsed.
type Settings struct {
	OnMessageBegin    Cb
	OnPath            DataCb
	OnQueryString     DataCb
	OnURL             DataCb
	OnFragment        DataCb
	OnHeaderField     DataCb
	OnHeaderValue     DataCb
	OnHeadersComplete Cb
	OnBody            DataCb
	OnMessageComplete Cb
}

// mark kinds for the open field spans (see parse_exec.go)
// (flush order: the path/query/fragment sub-spans are reported before
// the umbrella url span)
const (
	mkPath = iota
	mkQuery
	mkFrag
	mkURL
	mkHField
	mkHValue
	markNo
)

// dataCb maps a mark kind to the corresponding data callback.
func (s *Settings) dataCb(k int) DataCb {
	switch k {
	case mkPath:
		return s.OnPath
	case mkQuery:
		return s.OnQueryString
	case mkFrag:
		return s.OnFragment
	case mkURL:
		return s.OnURL
	case mkHField:
		return s.OnHeaderField
	case mkHValue:
		return s.OnHeaderValue
	}
	return nil
}

// Parser is an incremental HTTP/1.x message parser instance, one per
// connection, reusable for all the messages on that connection.
// It performs no I/O and owns no buffers: Execute reports the message
// elements as they are recognized, as sub-slices of the caller input.
// The zero value is not usable, call Init first.
// A Parser must not be used concurrently.
type Parser struct {
	mode  Mode
	state pState
	errno ErrorHdr

	// header sub-state
	hMatch   hdrMatch // streaming field name classifier
	hType    HdrT     // resolved type of the current header
	hTok     tokMatch // value token matcher (Connection/Transfer-Encoding)
	hvClen   int64    // Content-Length value accumulator
	hvDigits bool     // at least one Content-Length digit seen
	hvPend   bool     // a header value awaits finalization (fold check)

	index         int      // progress inside a multi-byte literal
	flags         MsgFlags // framing flags of the current message
	hdrFlags      HdrFlags // recognized header types seen (diagnostics)
	nread         OffsT    // header phase byte count (bound enforcement)
	contentLength int64    // declared body length, -1 when unset;
	// reused as the remaining chunk size in the chunked states
	bodyRead int64 // body bytes delivered so far

	// open field spans; offsets are valid only inside the current
	// Execute call, mopen survives across calls for fields split on a
	// slice boundary, msize accumulates the flushed span lengths
	marks [markNo]PField
	mopen [markNo]bool
	msize [markNo]OffsT

	mbuf [MaxMethodLen]byte // request method literal scratch

	isResp  bool // current message is a response
	upgrade bool // parser stopped because of Upgrade/CONNECT

	// read-only for the caller, valid once the relevant part is parsed
	StatusCode uint16     // responses only
	MethodNo   HTTPMethod // requests only
	HTTPMajor  uint8
	HTTPMinor  uint8

	// opaque caller slot, never inspected, survives Init
	UserData interface{}
}

// Init (re-)initializes the parser for a new connection.
// Everything except UserData is reset; it is idempotent and is also the
// only way out of an error state.
//
// With ModeEither the message kind is decided on the first bytes: an
// 'H' followed by 'T' commits to the response path, everything else is
// parsed as a request (HEAD still works; a hypothetical request method
// starting with "HT" would be misread as a status line).
func (p *Parser) Init(mode Mode) {
	ud := p.UserData
	*p = Parser{}
	p.UserData = ud
	p.mode = mode
	p.state = startState(mode)
	p.contentLength = -1
}

// Mode returns the parser mode set at Init.
func (p *Parser) Mode() Mode {
	return p.mode
}

// Response returns true if the current (or last completed) message is a
// response (in ModeEither this is known once the first line bytes
// committed to one of the two paths).
func (p *Parser) Response() bool {
	return p.isResp
}

// Upgrade returns true if the parser stopped because the connection is
// switching protocols (Upgrade or CONNECT); the unconsumed input tail
// belongs to the new protocol and is owned by the caller.
func (p *Parser) Upgrade() bool {
	return p.upgrade
}

// Err returns true if the parser is in the (sticky) error state.
func (p *Parser) Err() bool {
	return p.state == sDead && p.errno != ErrHdrOk
}

// Error returns the sticky parse error (ErrHdrOk if none).
// The canonical error check after Execute remains
// consumed < len && !Upgrade(); the error kind is informational.
func (p *Parser) Error() ErrorHdr {
	return p.errno
}

// MsgFlags returns the framing flags of the current (or last completed)
// message.
func (p *Parser) MsgFlags() MsgFlags {
	return p.flags
}

// HdrFlags returns the set of recognized (framing relevant) header
// types seen in the current (or last completed) message.
func (p *Parser) HdrFlags() HdrFlags {
	return p.hdrFlags
}

// ShouldKeepAlive reports whether the connection may carry another
// message after the current one completes. It is valid between the
// headers-complete event and the begin of the next message.
// HTTP/1.1 defaults to keep-alive unless "Connection: close" was seen;
// HTTP/1.0 (and 0.9) requires an explicit "Connection: keep-alive".
func (p *Parser) ShouldKeepAlive() bool {
	if p.HTTPMajor > 0 && p.HTTPMinor > 0 {
		// HTTP/1.1
		return p.flags&FConnClose == 0
	}
	// HTTP/1.0 or 0.9
	return p.flags&FConnKeepAlive != 0
}

// resetMsg clears the per-message state, keeping the connection scoped
// fields (mode, UserData). Called when the first byte of a new message
// arrives, so that the previous message metadata (flags, version,
// status) stays readable until then.
func (p *Parser) resetMsg() {
	p.errno = ErrHdrOk
	p.hMatch.reset()
	p.hType = HdrNone
	p.hvClen = 0
	p.hvDigits = false
	p.hvPend = false
	p.index = 0
	p.flags = 0
	p.hdrFlags.Reset()
	p.nread = 1 // the first message byte, already counted by Execute
	p.contentLength = -1
	p.bodyRead = 0
	for k := 0; k < markNo; k++ {
		p.marks[k].Reset()
		p.mopen[k] = false
		p.msize[k] = 0
	}
	p.isResp = false
	p.upgrade = false
	p.StatusCode = 0
	p.MethodNo = MUndef
	p.HTTPMajor = 0
	p.HTTPMinor = 0
}
