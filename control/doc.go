// control/doc.go
// Author: momentics <momentics@gmail.com>
//
// Package control is the observability plane of the crash pipeline: a
// thread-safe configuration mirror and a counter registry tracking how
// records move through capture, queueing and delivery.
package control
