// Package ir provides the JSON snapshot contract shared by the machine engines.
//
// This package contains document types, wire constants, canonical encoding and
// the precondition errors reported by every engine. All engine packages import
// ir; ir imports nothing internal.
//
// Key constraints:
//   - Epsilon is always written as "&" and the tape blank as "β" on the wire,
//     whatever sentinel an engine was constructed with
//   - All JSON tags use snake_case
//   - Arrays in documents are sorted so that equal machines encode identically
//   - Individual malformed transition records are reported as Warnings, never
//     as a failure of the whole document
package ir
