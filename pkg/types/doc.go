// Package types defines the identifiers shared across the module: memory
// region kinds, byte and register orders, numeric cell addresses, and the
// error kinds and sentinels the accessor layer reports.
//
// Design goals:
//   - Small, copyable values instead of object graphs.
//   - Paranoid bounds checking; never panic on malformed input.
//   - Typed errors with stable categories (attach/bounds/decode/config/state).
//
// Beyond the standard library this package depends only on the YAML decoder
// backing the order configuration hooks.
package types
