// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpev

// pState is the type for the nodes of the lexer state graph.
type pState uint8

// lexer states. The order matters: everything in
// [sStartReqOrRes, sHdrsAlmostDone] belongs to the header phase and is
// counted against MaxHeaderSize (the chunked trailer part re-enters the
// header states and gets its own allowance, nread being reset at the
// end of the headers).
const (
	sDead pState = iota // error or closed connection, no more input

	sStartReqOrRes // ModeEither: dispatch on the first bytes
	sResOrRespH    // seen 'H', could be a status line or e.g. HEAD
	sStartReq
	sStartRes

	// status line
	sResVer    // inside the "HTTP/" literal
	sResMajor  // major version digit
	sResDot    // '.' between the version digits
	sResMinor  // minor version digit
	sResStatusStart
	sResStatus
	sResReason // reason phrase, consumed but not reported
	sResLineAlmostDone

	// request line
	sReqMethod
	sReqSpacesBeforeURL
	sReqSchema
	sReqSchemaSlash
	sReqSchemaSlashSlash
	sReqHost
	sReqPath
	sReqQueryStart
	sReqQuery
	sReqFragStart
	sReqFrag
	sReqHTTPStart
	sReqHTTP // inside the "HTTP/" literal
	sReqMajor
	sReqDot
	sReqMinor
	sReqLineEnd
	sReqLineAlmostDone

	// headers (shared with the chunked trailer part)
	sHdrFieldStart
	sHdrField
	sHdrValueStart
	sHdrValue
	sHdrAlmostDone
	sHdrsAlmostDone

	// body
	sBodyIdentity
	sBodyIdentityEOF
	sChunkSizeStart
	sChunkSize
	sChunkExt
	sChunkSizeAlmostDone
	sChunkData
	sChunkDataEnd // CR after the chunk data
	sChunkDataAlmostDone
)

// http version literal (both first line forms)
var httpLit = []byte("HTTP/")

// startState returns the initial lexer state for a mode.
func startState(m Mode) pState {
	switch m {
	case ModeRequest:
		return sStartReq
	case ModeResponse:
		return sStartRes
	}
	return sStartReqOrRes
}

// hdrPhase returns true for the states whose bytes count against
// MaxHeaderSize.
func hdrPhase(s pState) bool {
	return s >= sStartReqOrRes && s <= sHdrsAlmostDone
}

// fail puts the parser into the sticky error state.
func (p *Parser) fail(e ErrorHdr) {
	p.errno = e
	p.state = sDead
	for k := 0; k < markNo; k++ {
		p.mopen[k] = false
	}
}

// mark opens a field span of kind k at offset i in the current slice.
func (p *Parser) mark(k, i int) {
	p.marks[k].Set(i, i)
	p.mopen[k] = true
	p.msize[k] = 0
}

// commit closes the span of kind k at offset end and reports it.
// It returns false if the callback rejected.
func (p *Parser) commit(k int, s *Settings, data []byte, end int) bool {
	if !p.mopen[k] {
		return true
	}
	p.mopen[k] = false
	p.marks[k].Extend(end)
	p.msize[k] += p.marks[k].Len
	if f := s.dataCb(k); f != nil && !p.marks[k].Empty() {
		return f(p, p.marks[k].Get(data)) == 0
	}
	return true
}

// flushMarks reports the partial content of all the open spans at the
// end of an input slice. The spans stay open (the mark offsets would
// dangle across calls and are re-armed at offset 0 on the next call).
func (p *Parser) flushMarks(s *Settings, data []byte) bool {
	for k := 0; k < markNo; k++ {
		if !p.mopen[k] {
			continue
		}
		p.marks[k].Extend(len(data))
		p.msize[k] += p.marks[k].Len
		if f := s.dataCb(k); f != nil && !p.marks[k].Empty() {
			if f(p, p.marks[k].Get(data)) != 0 {
				return false
			}
		}
	}
	return true
}

// msgDone fires the message-complete event and arms the parser for the
// next message on the connection (or refuses further input if the
// framing forbids reuse).
func (p *Parser) msgDone(s *Settings) ErrorHdr {
	if s.OnMessageComplete != nil && s.OnMessageComplete(p) != 0 {
		return ErrHdrCallback
	}
	if p.ShouldKeepAlive() {
		p.state = startState(p.mode)
	} else {
		// next message would be undelimited from this one
		p.state = sDead
	}
	return ErrHdrOk
}

// headersDone runs the end-of-headers actions: headers-complete event,
// upgrade exit and the body framing decision.
// exit == true means the parser must stop and hand the connection over
// (Upgrade/CONNECT).
func (p *Parser) headersDone(s *Settings) (exit bool, e ErrorHdr) {
	if p.flags&FTrailing != 0 {
		// end of the chunked trailer part
		return false, p.msgDone(s)
	}
	p.nread = 0
	rv := 0
	if s.OnHeadersComplete != nil {
		rv = s.OnHeadersComplete(p)
	}
	if rv != 0 && rv != 1 {
		return false, ErrHdrCallback
	}
	if p.flags&FUpgrade != 0 || p.MethodNo == MConnect {
		p.upgrade = true
		return true, ErrHdrOk
	}
	if rv == 1 {
		// the caller knows no body follows (e.g. response to a HEAD
		// request), whatever the headers said
		return false, p.msgDone(s)
	}
	if p.isResp && (p.StatusCode/100 == 1 ||
		p.StatusCode == 204 || p.StatusCode == 304) {
		return false, p.msgDone(s)
	}
	if p.flags&FChunked != 0 {
		// chunked wins over any Content-Length (rfc7230 3.3.3);
		// contentLength is reused for the chunk sizes from here on
		p.contentLength = 0
		p.state = sChunkSizeStart
		return false, ErrHdrOk
	}
	if p.contentLength == 0 {
		return false, p.msgDone(s)
	}
	if p.contentLength > 0 {
		p.state = sBodyIdentity
		return false, ErrHdrOk
	}
	if !p.isResp {
		// requests without framing headers have no body
		return false, p.msgDone(s)
	}
	// response body delimited by connection close
	p.state = sBodyIdentityEOF
	return false, ErrHdrOk
}

// chunkSizeDone advances past a parsed chunk-size line.
func (p *Parser) chunkSizeDone() {
	if p.contentLength == 0 {
		// last-chunk: the trailer part follows
		p.flags |= FTrailing
		p.state = sHdrFieldStart
		return
	}
	p.state = sChunkData
}

// Execute drives the parser with the next chunk of input.
// A zero length slice signals end of input (connection closed).
//
// It returns the number of consumed bytes: equal to len(data) under
// normal progress; less than len(data) either on a fatal parse error
// (sticky: all the following calls return 0 until Init) or, if
// Upgrade() reports true, because the connection switched protocols
// after the headers and the unconsumed tail belongs to the caller.
// A rejecting callback stops the parser just past the byte that
// triggered it, so a rejection on the last byte of the slice (or in the
// end of slice flush of the open spans) returns len(data); Err() still
// reports the error.
func (p *Parser) Execute(s *Settings, data []byte) int {
	var err ErrorHdr
	var exit bool
	i := 0

	if p.upgrade {
		// stopped for a protocol handoff; the remaining input is not
		// HTTP and belongs to the caller (Init starts over)
		return 0
	}
	if p.state == sDead && p.errno != ErrHdrOk {
		return 0
	}
	if len(data) == 0 {
		// end of input
		switch p.state {
		case sBodyIdentityEOF:
			if s.OnMessageComplete != nil && s.OnMessageComplete(p) != 0 {
				p.fail(ErrHdrCallback)
				return 0
			}
			p.state = sDead
		case sDead, sStartReqOrRes, sStartReq, sStartRes:
			// nothing in progress
		default:
			p.fail(ErrHdrTrunc)
		}
		return 0
	}
	// re-arm the spans left open at the previous slice end
	for k := 0; k < markNo; k++ {
		if p.mopen[k] {
			p.marks[k].Set(0, 0)
		}
	}

	for i < len(data) {
		c := data[i]
		if hdrPhase(p.state) {
			p.nread++
			if p.nread > MaxHeaderSize {
				err = ErrHdrTooLong
				goto errState
			}
		}
		switch p.state {

		case sStartReqOrRes:
			if c == '\r' || c == '\n' {
				break // skip empty lines between messages
			}
			p.resetMsg()
			if s.OnMessageBegin != nil && s.OnMessageBegin(p) != 0 {
				goto errCallback
			}
			if c == 'H' {
				p.state = sResOrRespH
				break
			}
			if !isMethodChar(c) {
				err = ErrHdrBadChar
				goto errState
			}
			p.mbuf[0] = c
			p.index = 1
			p.state = sReqMethod

		case sResOrRespH:
			if c == 'T' {
				// "HT" => status line
				p.isResp = true
				p.index = 2
				p.state = sResVer
				break
			}
			// request method starting with 'H' (e.g. HEAD)
			if !isMethodChar(c) {
				err = ErrHdrBadChar
				goto errState
			}
			p.mbuf[0] = 'H'
			p.mbuf[1] = c
			p.index = 2
			p.state = sReqMethod

		case sStartReq:
			if c == '\r' || c == '\n' {
				break
			}
			p.resetMsg()
			if s.OnMessageBegin != nil && s.OnMessageBegin(p) != 0 {
				goto errCallback
			}
			if !isMethodChar(c) {
				err = ErrHdrBadChar
				goto errState
			}
			p.mbuf[0] = c
			p.index = 1
			p.state = sReqMethod

		case sStartRes:
			if c == '\r' || c == '\n' {
				break
			}
			p.resetMsg()
			p.isResp = true
			if s.OnMessageBegin != nil && s.OnMessageBegin(p) != 0 {
				goto errCallback
			}
			if c != 'H' {
				err = ErrHdrBadVersion
				goto errState
			}
			p.index = 1
			p.state = sResVer

		case sResVer:
			if c != httpLit[p.index] {
				err = ErrHdrBadVersion
				goto errState
			}
			p.index++
			if p.index == len(httpLit) {
				p.state = sResMajor
			}

		case sResMajor:
			if !isDigit(c) {
				err = ErrHdrBadVersion
				goto errState
			}
			p.HTTPMajor = c - '0'
			p.state = sResDot

		case sResDot:
			if c != '.' {
				err = ErrHdrBadVersion
				goto errState
			}
			p.state = sResMinor

		case sResMinor:
			if !isDigit(c) {
				err = ErrHdrBadVersion
				goto errState
			}
			p.HTTPMinor = c - '0'
			p.index = 0
			p.state = sResStatusStart

		case sResStatusStart:
			if c == ' ' {
				break
			}
			if !isDigit(c) {
				err = ErrHdrBadStatus
				goto errState
			}
			p.StatusCode = uint16(c - '0')
			p.index = 1
			p.state = sResStatus

		case sResStatus:
			switch {
			case isDigit(c):
				if p.index >= 3 {
					if strictMode {
						err = ErrHdrBadStatus
						goto errState
					}
					if p.StatusCode > (65535-uint16(c-'0'))/10 {
						err = ErrHdrBadStatus
						goto errState
					}
				}
				p.StatusCode = p.StatusCode*10 + uint16(c-'0')
				p.index++
			case c == ' ':
				if strictMode && p.index != 3 {
					err = ErrHdrBadStatus
					goto errState
				}
				p.state = sResReason
			case c == '\r':
				if strictMode && p.index != 3 {
					err = ErrHdrBadStatus
					goto errState
				}
				p.state = sResLineAlmostDone
			case c == '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				p.state = sHdrFieldStart
			default:
				err = ErrHdrBadStatus
				goto errState
			}

		case sResReason:
			switch {
			case c == '\r':
				p.state = sResLineAlmostDone
			case c == '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				p.state = sHdrFieldStart
			default:
				if !isHdrValChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
			}

		case sResLineAlmostDone:
			if c != '\n' {
				err = ErrHdrBadEOL
				goto errState
			}
			p.state = sHdrFieldStart

		case sReqMethod:
			if c == ' ' {
				p.MethodNo = GetMethodNo(p.mbuf[:p.index])
				if strictMode && p.MethodNo == MOther {
					err = ErrHdrBadMethod
					goto errState
				}
				p.state = sReqSpacesBeforeURL
				break
			}
			if !isMethodChar(c) || p.index == MaxMethodLen {
				err = ErrHdrBadMethod
				goto errState
			}
			p.mbuf[p.index] = c
			p.index++

		case sReqSpacesBeforeURL:
			if c == ' ' {
				break
			}
			if c == '/' || c == '*' {
				// origin form (or asterisk form)
				p.mark(mkURL, i)
				p.mark(mkPath, i)
				p.state = sReqPath
				break
			}
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				// absolute-URI (or authority) form
				p.mark(mkURL, i)
				p.state = sReqSchema
				break
			}
			err = ErrHdrBadChar
			goto errState

		case sReqSchema:
			switch {
			case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
				isDigit(c) || c == '+' || c == '-' || c == '.':
				// scheme chars
			case c == ':':
				p.state = sReqSchemaSlash
			default:
				err = ErrHdrBadChar
				goto errState
			}

		case sReqSchemaSlash:
			if c == '/' {
				p.state = sReqSchemaSlashSlash
				break
			}
			// no slash after ':' => authority form (CONNECT host:port)
			if isURLChar(c) {
				p.state = sReqHost
				break
			}
			err = ErrHdrBadChar
			goto errState

		case sReqSchemaSlashSlash:
			if c != '/' {
				err = ErrHdrBadChar
				goto errState
			}
			p.state = sReqHost

		case sReqHost:
			switch c {
			case '/':
				p.mark(mkPath, i)
				p.state = sReqPath
			case '?':
				p.state = sReqQueryStart
			case '#':
				p.state = sReqFragStart
			case ' ':
				if !p.commit(mkURL, s, data, i) {
					goto errCallback
				}
				p.state = sReqHTTPStart
			case '\r', '\n':
				if !p.commit(mkURL, s, data, i) {
					goto errCallback
				}
				p.HTTPMajor = 0
				p.HTTPMinor = 9
				if c == '\r' {
					p.state = sReqLineAlmostDone
				} else if strictMode {
					err = ErrHdrBadEOL
					goto errState
				} else {
					p.state = sHdrFieldStart
				}
			default:
				if !isURLChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
			}

		case sReqPath:
			switch c {
			case ' ', '\r', '\n':
				if !p.commit(mkPath, s, data, i) ||
					!p.commit(mkURL, s, data, i) {
					goto errCallback
				}
				if c == ' ' {
					p.state = sReqHTTPStart
					break
				}
				// CR or LF: simple request, no version
				p.HTTPMajor = 0
				p.HTTPMinor = 9
				if c == '\r' {
					p.state = sReqLineAlmostDone
				} else if strictMode {
					err = ErrHdrBadEOL
					goto errState
				} else {
					p.state = sHdrFieldStart
				}
			case '?':
				if !p.commit(mkPath, s, data, i) {
					goto errCallback
				}
				p.state = sReqQueryStart
			case '#':
				if !p.commit(mkPath, s, data, i) {
					goto errCallback
				}
				p.state = sReqFragStart
			default:
				if !isURLChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
			}

		case sReqQuery:
			switch c {
			case ' ', '\r', '\n':
				if !p.commit(mkQuery, s, data, i) ||
					!p.commit(mkURL, s, data, i) {
					goto errCallback
				}
				if c == ' ' {
					p.state = sReqHTTPStart
					break
				}
				p.HTTPMajor = 0
				p.HTTPMinor = 9
				if c == '\r' {
					p.state = sReqLineAlmostDone
				} else if strictMode {
					err = ErrHdrBadEOL
					goto errState
				} else {
					p.state = sHdrFieldStart
				}
			case '#':
				if !p.commit(mkQuery, s, data, i) {
					goto errCallback
				}
				p.state = sReqFragStart
			default:
				// '?' inside the query is a plain char
				if !isURLChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
			}

		case sReqFrag:
			switch c {
			case ' ', '\r', '\n':
				if !p.commit(mkFrag, s, data, i) ||
					!p.commit(mkURL, s, data, i) {
					goto errCallback
				}
				if c == ' ' {
					p.state = sReqHTTPStart
					break
				}
				p.HTTPMajor = 0
				p.HTTPMinor = 9
				if c == '\r' {
					p.state = sReqLineAlmostDone
				} else if strictMode {
					err = ErrHdrBadEOL
					goto errState
				} else {
					p.state = sHdrFieldStart
				}
			default:
				if !isURLChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
			}

		case sReqQueryStart, sReqFragStart:
			switch c {
			case ' ':
				if !p.commit(mkURL, s, data, i) {
					goto errCallback
				}
				p.state = sReqHTTPStart
			case '#':
				if p.state == sReqQueryStart {
					p.state = sReqFragStart
					break
				}
				err = ErrHdrBadChar
				goto errState
			case '\r', '\n':
				if !p.commit(mkURL, s, data, i) {
					goto errCallback
				}
				p.HTTPMajor = 0
				p.HTTPMinor = 9
				if c == '\r' {
					p.state = sReqLineAlmostDone
				} else if strictMode {
					err = ErrHdrBadEOL
					goto errState
				} else {
					p.state = sHdrFieldStart
				}
			default:
				if !isURLChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
				if p.state == sReqQueryStart {
					p.mark(mkQuery, i)
					p.state = sReqQuery
				} else {
					p.mark(mkFrag, i)
					p.state = sReqFrag
				}
			}

		case sReqHTTPStart:
			if c == ' ' {
				break
			}
			if c != 'H' {
				err = ErrHdrBadVersion
				goto errState
			}
			p.index = 1
			p.state = sReqHTTP

		case sReqHTTP:
			if c != httpLit[p.index] {
				err = ErrHdrBadVersion
				goto errState
			}
			p.index++
			if p.index == len(httpLit) {
				p.state = sReqMajor
			}

		case sReqMajor:
			if !isDigit(c) {
				err = ErrHdrBadVersion
				goto errState
			}
			p.HTTPMajor = c - '0'
			p.state = sReqDot

		case sReqDot:
			if c != '.' {
				err = ErrHdrBadVersion
				goto errState
			}
			p.state = sReqMinor

		case sReqMinor:
			if !isDigit(c) {
				err = ErrHdrBadVersion
				goto errState
			}
			p.HTTPMinor = c - '0'
			p.state = sReqLineEnd

		case sReqLineEnd:
			switch c {
			case '\r':
				p.state = sReqLineAlmostDone
			case '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				p.state = sHdrFieldStart
			default:
				err = ErrHdrBadEOL
				goto errState
			}

		case sReqLineAlmostDone:
			if c != '\n' {
				err = ErrHdrBadEOL
				goto errState
			}
			p.state = sHdrFieldStart

		case sHdrFieldStart:
			if (c == ' ' || c == '\t') && p.hvPend {
				// obs-fold: previous header value continues; the
				// leading whitespace is part of the reported span
				p.mark(mkHValue, i)
				if e := p.hdrValFeed(' '); e != ErrHdrOk {
					err = e
					goto errState
				}
				p.state = sHdrValue
				break
			}
			if p.hvPend {
				// no fold follows: finalize the previous value
				if e := p.hdrValDone(); e != ErrHdrOk {
					err = e
					goto errState
				}
				p.hvPend = false
			}
			switch {
			case c == '\r':
				p.state = sHdrsAlmostDone
			case c == '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				exit, err = p.headersDone(s)
				if err != ErrHdrOk {
					if err == ErrHdrCallback {
						goto errCallback
					}
					goto errState
				}
				if exit {
					return i + 1
				}
			default:
				if !isTokenChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
				p.hMatch.reset()
				p.hMatch.feed(c)
				p.mark(mkHField, i)
				p.state = sHdrField
			}

		case sHdrField:
			switch {
			case c == ':':
				if !p.commit(mkHField, s, data, i) {
					goto errCallback
				}
				p.hdrNameDone()
				p.state = sHdrValueStart
			case isTokenChar(c):
				p.hMatch.feed(c)
			default:
				// includes CR/LF: a header line without ':'
				err = ErrHdrBadChar
				goto errState
			}

		case sHdrValueStart:
			switch {
			case c == ' ' || c == '\t':
				// OWS before the value
			case c == '\r':
				p.hvPend = true // empty value
				p.state = sHdrAlmostDone
			case c == '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				p.hvPend = true
				p.state = sHdrFieldStart
			default:
				if !isHdrValChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
				p.mark(mkHValue, i)
				if e := p.hdrValFeed(c); e != ErrHdrOk {
					err = e
					goto errState
				}
				p.hvPend = true
				p.state = sHdrValue
			}

		case sHdrValue:
			switch {
			case c == '\r':
				if !p.commit(mkHValue, s, data, i) {
					goto errCallback
				}
				p.state = sHdrAlmostDone
			case c == '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				if !p.commit(mkHValue, s, data, i) {
					goto errCallback
				}
				p.state = sHdrFieldStart
			default:
				if !isHdrValChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
				if e := p.hdrValFeed(c); e != ErrHdrOk {
					err = e
					goto errState
				}
			}

		case sHdrAlmostDone:
			if c != '\n' {
				err = ErrHdrBadEOL
				goto errState
			}
			p.state = sHdrFieldStart

		case sHdrsAlmostDone:
			if c != '\n' {
				err = ErrHdrBadEOL
				goto errState
			}
			exit, err = p.headersDone(s)
			if err != ErrHdrOk {
				if err == ErrHdrCallback {
					goto errCallback
				}
				goto errState
			}
			if exit {
				return i + 1
			}

		case sBodyIdentity:
			avail := len(data) - i
			if int64(avail) > p.contentLength-p.bodyRead {
				avail = int(p.contentLength - p.bodyRead)
			}
			if s.OnBody != nil && s.OnBody(p, data[i:i+avail]) != 0 {
				i += avail - 1
				goto errCallback
			}
			p.bodyRead += int64(avail)
			i += avail
			if p.bodyRead == p.contentLength {
				if e := p.msgDone(s); e != ErrHdrOk {
					p.fail(ErrHdrCallback)
					return i
				}
			}
			continue

		case sBodyIdentityEOF:
			if s.OnBody != nil && s.OnBody(p, data[i:]) != 0 {
				i = len(data) - 1
				goto errCallback
			}
			p.bodyRead += int64(len(data) - i)
			i = len(data)
			continue

		case sChunkSizeStart:
			v := hexVal(c)
			if v < 0 {
				err = ErrHdrBadChunkSize
				goto errState
			}
			p.contentLength = int64(v)
			p.state = sChunkSize

		case sChunkSize:
			switch {
			case c == '\r':
				p.state = sChunkSizeAlmostDone
			case c == ';':
				p.state = sChunkExt
			case c == '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				p.chunkSizeDone()
			default:
				var ok bool
				p.contentLength, ok = addHexDigit(p.contentLength, c)
				if !ok {
					err = ErrHdrBadChunkSize
					goto errState
				}
			}

		case sChunkExt:
			// chunk extensions are skipped, not reported
			switch {
			case c == '\r':
				p.state = sChunkSizeAlmostDone
			case c == '\n':
				if strictMode {
					err = ErrHdrBadEOL
					goto errState
				}
				p.chunkSizeDone()
			default:
				if !isHdrValChar(c) {
					err = ErrHdrBadChar
					goto errState
				}
			}

		case sChunkSizeAlmostDone:
			if c != '\n' {
				err = ErrHdrBadEOL
				goto errState
			}
			p.chunkSizeDone()

		case sChunkData:
			avail := len(data) - i
			if int64(avail) > p.contentLength {
				avail = int(p.contentLength)
			}
			if s.OnBody != nil && s.OnBody(p, data[i:i+avail]) != 0 {
				i += avail - 1
				goto errCallback
			}
			p.bodyRead += int64(avail)
			p.contentLength -= int64(avail)
			i += avail
			if p.contentLength == 0 {
				p.state = sChunkDataEnd
			}
			continue

		case sChunkDataEnd:
			switch {
			case c == '\r':
				p.state = sChunkDataAlmostDone
			case c == '\n' && !strictMode:
				p.state = sChunkSizeStart
			default:
				err = ErrHdrBadEOL
				goto errState
			}

		case sChunkDataAlmostDone:
			if c != '\n' {
				err = ErrHdrBadEOL
				goto errState
			}
			p.state = sChunkSizeStart

		case sDead:
			// data after a close-delimited message
			err = ErrHdrBadChar
			goto errState

		default:
			err = ErrHdrBug
			goto errState
		}
		i++
	}
	// end of the input slice: report the partial content of the open
	// field spans, so the caller may reuse its buffer
	if !p.flushMarks(s, data) {
		p.fail(ErrHdrCallback)
		return len(data)
	}
	return len(data)

errState:
	p.fail(err)
	return i
errCallback:
	p.fail(ErrHdrCallback)
	return i + 1
}
