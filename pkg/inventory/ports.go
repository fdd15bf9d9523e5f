// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package inventory

import (
	"strings"
)

// ParsePorts extracts port numbers from container runtime port text such as
// "0.0.0.0:8038->8038/tcp, :::8038->8038/tcp, 3306/tcp".
//
// Published mappings contribute the host side port (the number after the last
// colon left of "->"). Unpublished entries contribute their bare "port/proto"
// number. Ranges ("8000-8002/tcp") expand. Unparseable entries are skipped.
func ParsePorts(text string) PortList {
	var ports []uint16
	for _, entry := range strings.Split(text, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		var token string
		if host, _, ok := strings.Cut(entry, "->"); ok {
			i := strings.LastIndex(host, ":")
			if i < 0 {
				continue
			}
			token = host[i+1:]
		} else {
			token, _, _ = strings.Cut(entry, "/")
		}
		ports = append(ports, expandPortRange(token)...)
	}
	return NewPortList(ports...)
}

func expandPortRange(token string) []uint16 {
	lo, hi, isRange := strings.Cut(strings.TrimSpace(token), "-")
	first, err := parsePortNumber(lo)
	if err != nil {
		return nil
	}
	if !isRange {
		return []uint16{first}
	}
	last, err := parsePortNumber(hi)
	if err != nil || last < first {
		return nil
	}
	out := make([]uint16, 0, int(last-first)+1)
	for p := int(first); p <= int(last); p++ {
		out = append(out, uint16(p))
	}
	return out
}

// ParsePortNumber parses a single decimal port in the range 1-65535.
func ParsePortNumber(s string) (uint16, bool) {
	p, err := parsePortNumber(s)
	return p, err == nil
}

// ParseAddrPort returns the port from a socket address such as "0.0.0.0:22",
// "[::]:443", "*:80" or "[::ffff:127.0.0.1]:8080".
func ParseAddrPort(addr string) (uint16, bool) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return 0, false
	}
	return ParsePortNumber(addr[i+1:])
}
