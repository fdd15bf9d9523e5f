// Package container detects containers of one runtime (docker or podman).
//
// A Runtime lists containers and resolves their host pids. CLIRuntime shells
// out to the runtime's command line client; APIRuntime uses the Docker Engine
// API, which podman also serves on its compatibility socket. Both report port
// mappings in the same text form, so one parser serves either backend.
//
// The Detector drops containers whose status starts with Exited, Created or
// Dead before inspecting them, then resolves pids with bounded, rate limited
// concurrency while keeping the listing order.
package container
