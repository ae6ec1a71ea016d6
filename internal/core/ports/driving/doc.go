// Package driving provides interfaces for primary/inbound ports: the
// operations the CLI invokes on the core.
package driving
