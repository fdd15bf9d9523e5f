// Package identity resolves the instance id and name recorded in a snapshot.
//
// Lookup order, per field:
//  1. explicit --instance-id / --instance-name values
//  2. the cloud metadata service (<url>/instance-id and <url>/hostname)
//  3. NODE_NAME or KUBERNETES_NODE_NAME
//  4. the host name
//
// Resolution never fails. A field no source can fill is set to "unknown".
package identity
