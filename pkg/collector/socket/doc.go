// Package socket detects services by their listening TCP sockets.
//
// Listening sockets come from gopsutil when the socket tables are readable
// and from "ss -H -tlnp" otherwise. Each socket owner is resolved to a
// command name and classified as a systemd service when a unit of that name
// is active, or as a bare process.
//
// Sockets owned by pids that a container detector already claimed are
// skipped so a container's host side listener is not counted twice.
package socket
