// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cart

import "strings"

// MergeServerList reconciles a locally held line list with a freshly
// fetched server list.
//
// # Description
//
// The optimistic-write rule:
//
//   - Server data wins for matching ids.
//   - Local lines whose id the server no longer knows are dropped.
//   - Local pending-id lines are preserved until a server row that
//     corresponds to them (same name and size) arrives, at which point
//     the pending line is replaced in place by the server row.
//
// The result keeps local ordering for surviving lines and appends
// server rows the local list never saw. A refresh completing just after
// an optimistic add therefore never makes the new row blink out.
//
// # Inputs
//
//   - local: Current lines, possibly holding pending ids.
//   - server: Authoritative lines from the backend.
//
// # Outputs
//
//   - []Line: The merged list. Never aliases either input.
func MergeServerList(local, server []Line) []Line {
	byID := make(map[string]Line, len(server))
	for _, row := range server {
		byID[row.ID] = row
	}

	claimed := make(map[string]bool, len(server))
	merged := make([]Line, 0, len(local)+len(server))

	for _, l := range local {
		if l.Pending() {
			if row, ok := matchPending(l, server, claimed); ok {
				claimed[row.ID] = true
				merged = append(merged, row)
			} else {
				merged = append(merged, l)
			}
			continue
		}
		if row, ok := byID[l.ID]; ok {
			claimed[row.ID] = true
			merged = append(merged, row)
		}
		// Absent from the server list: the row was deleted remotely.
	}

	for _, row := range server {
		if !claimed[row.ID] {
			merged = append(merged, row)
		}
	}
	return merged
}

// matchPending finds the server row a pending line was created for.
// Correspondence is by name and size, the only identity an
// unacknowledged write has.
func matchPending(pending Line, server []Line, claimed map[string]bool) (Line, bool) {
	for _, row := range server {
		if claimed[row.ID] {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row.Name), strings.TrimSpace(pending.Name)) &&
			strings.EqualFold(strings.TrimSpace(row.Size), strings.TrimSpace(pending.Size)) {
			return row, true
		}
	}
	return Line{}, false
}
