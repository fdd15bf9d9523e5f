// Package inventory holds the application record model and the pure
// normalize, merge and assemble steps of a collection run.
//
// Detectors emit Candidates. Normalize turns each candidate into an
// ApplicationRecord or rejects it with an ErrCodeMalformed or ErrCodeExcluded
// structured error. Records are then folded by identity key (name, type)
// through an Index:
//
//	ix := inventory.NewIndex()
//	for _, c := range candidates {
//	    rec, err := inventory.Normalize(c)
//	    if err != nil {
//	        continue
//	    }
//	    ix.Add(rec)
//	}
//	snap := inventory.Assemble(id, inventory.SchemaVersion, ix.Records())
//
// Merge keeps the first-seen name, type and status, keeps the first non-nil
// image, container_id and process_name, and unions ports and pids. Records
// must therefore arrive in detector priority order.
//
// Ports are always numbers on the wire. Decoding also accepts numeric
// strings so inventories written by older collectors load cleanly. Pids are
// strings because "unknown" is a valid value.
package inventory
