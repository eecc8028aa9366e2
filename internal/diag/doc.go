// Package diag defines the diagnostic model shared by the config parser, the
// option validator, compiler engines and the loader pipeline.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Category – Message, Suggestion, Warning or Error (category.go).
//   - Code – numeric identifier; codes mirror the TypeScript compiler so that
//     output stays familiar (codes.go). Zero means the engine has no code for it.
//   - Message – human oriented text.
//   - File/Line/Column/Length – location, all optional. A diagnostic without a
//     file is global (option conflicts, config-level problems).
//
// # Producers and consumers
//
// Producers report through Reporter (BagReporter collects into a Bag). The
// pipeline filters Bag items down to errors and hands them to Format, which
// renders either the compact `file(line,col): error TS1234: msg` form or the
// pretty form with a source excerpt.
package diag
