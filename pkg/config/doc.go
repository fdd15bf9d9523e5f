// Package config reads the optional appinv configuration file.
//
// The file holds KEY=VALUE lines using the same names as the environment
// variables of the command line flags:
//
//	# /etc/appinv/appinv.conf
//	APPINV_RUNTIMES=docker,podman
//	APPINV_RUNTIME_BACKEND=api
//	APPINV_METADATA_URL="http://169.254.169.254/latest/meta-data"
//	export APPINV_OUTPUT=/var/lib/appinv/inventory.json
//
// Precedence is flag or environment first, then the file, then the built in
// default. The command layer applies that order; this package only parses.
package config
