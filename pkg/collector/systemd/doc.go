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

// Package systemd answers whether a process name is an active systemd service.
//
// DBusChecker lists all active units once per run through
// github.com/coreos/go-systemd/v22/dbus. Hosts without a reachable system bus
// (containers, minimal images) fall back to SystemctlChecker, which runs
// "systemctl is-active" per unit.
//
//	checker := systemd.NewDBusChecker(command.NewExecRunner())
//	if checker.IsActive(ctx, "sshd") {
//	    // sshd.service is active
//	}
package systemd
