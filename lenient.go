// Copyright 2022 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build httpev_lenient
// +build httpev_lenient

package httpev

// lenient grammar: LF accepted as line end, relaxed byte classes,
// unknown methods reported as MOther instead of failing.
const strictMode = false
