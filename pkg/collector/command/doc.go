// Package command runs host inspection tools (docker, podman, ss, ps,
// systemctl) behind a small Runner interface so detectors can be tested with
// canned output.
package command
