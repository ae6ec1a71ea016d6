// Package file provides file-based configuration and prompt storage.
//
// Configuration lives in a TOML file under the digest config directory
// (default ~/.digest/config.toml). Prompt templates live beside it as
// plain text files the user can edit.
package file
