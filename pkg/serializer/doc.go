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

// Package serializer writes and reads inventory documents.
//
// # Formats
//
//   - json: indented encoding/json output, the wire format
//   - yaml: gopkg.in/yaml.v3 output with the same field names
//   - table: tab-aligned rows for payloads implementing TableRenderer (write only)
//
// # Destinations
//
// NewFileWriterOrStdout picks a destination from the --output value:
//
//	""                      stdout
//	"-"                     stdout
//	"cm://namespace/name"   Kubernetes ConfigMap (server-side apply)
//	anything else           local file
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatJSON, output)
//	if err != nil {
//	    return err
//	}
//	defer closeQuietly(w)
//	err = w.Serialize(ctx, snap)
//
// ConfigMaps store the document under "inventory.<ext>" next to "format",
// "timestamp" and "collection_id" keys. Payloads implementing Describer add
// their metadata as appinv.nvidia.com/* annotations.
//
// # Sources
//
// FromFile loads a document from a file, an http(s) URL or a cm:// URI:
//
//	snap, err := serializer.FromFile[inventory.Snapshot](ctx, "https://inventories.example.com/web-01.json")
//
// HTTP reads go through HttpReader, which bounds connect and total time and
// caps the body size.
package serializer
