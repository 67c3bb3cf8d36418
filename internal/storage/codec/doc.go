// Package codec implements the session record wire format.
//
// A record is a concatenation of segments:
//
//	<key>|<value><key>|<value>...
//
// Each value uses the classic serialize notation:
//
//	N;                      null
//	b:0; b:1;               bool
//	i:42;                   integer
//	d:0.5; d:INF; d:NAN;    float
//	s:5:"hello";            string, length in bytes
//	a:2:{i:0;...i:1;...}    array of key/value pairs, keys are i: or s:
//
// Decoding is length aware: string values are consumed by their declared
// byte length, so delimiters inside strings are never misread. Decode
// never fails; a segment that does not parse is kept as raw text and the
// scanner resynchronizes at the next key.
package codec
