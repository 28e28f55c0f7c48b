// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build !httpev_lenient
// +build !httpev_lenient

package httpev

// strictMode enables the full rfc7230 grammar checks: CRLF line ends
// required, token/ctl byte classes enforced, status codes of exactly 3
// digits, unknown request methods rejected.
// Build with the `httpev_lenient` tag to trade the checks for
// throughput.
const strictMode = true
