package gtid

import "errors"

// ErrBufTooSmall is returned by Encode when the destination buffer cannot
// hold the encoded representation; callers should retry after sizing the
// buffer via EstimateEncodeSize.
var ErrBufTooSmall = errors.New("gtid: buffer too small")

// ErrParse is returned by Decode when the input text is malformed.
var ErrParse = errors.New("gtid: parse error")
