// Package keyvalue implements a read-only parser for Valve's text KeyValue
// format (VDF), the nested configuration format used by appmanifest files,
// libraryfolders registries, loginusers records, and localconfig files.
//
// The format is a tree: each entry is either a quoted "key" "value" pair or
// a "key" followed by a brace-delimited block of child entries. The parser
// produces an ordered Node tree and tolerates escaped quotes, bare
// (unquoted) keys, // comments, and files that are being written
// concurrently by another process (a truncated tail surfaces as a parse
// error, never a panic).
//
// Lookups by name are case-insensitive and never fail: a missing child
// resolves to a shared empty sentinel node, so callers chain lookups and
// check Empty() at the end.
package keyvalue
