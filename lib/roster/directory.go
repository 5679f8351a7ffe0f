// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import "sort"

// Directory maps participant ids to the latest record seen for them.
// Entries are replaced on every sighting and never removed during a
// session; Reset clears the directory when a new session starts.
type Directory struct {
	participants map[string]Participant
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{participants: map[string]Participant{}}
}

// Upsert stores participant, replacing any earlier record with its id.
func (d *Directory) Upsert(participant Participant) {
	d.participants[participant.ID] = participant
}

// Get returns the record for id.
func (d *Directory) Get(id string) (Participant, bool) {
	participant, ok := d.participants[id]
	return participant, ok
}

// Move updates a known participant's cursor. Unknown ids are ignored.
func (d *Directory) Move(id string, position Vector) bool {
	participant, ok := d.participants[id]
	if !ok {
		return false
	}
	participant.Position = position
	d.participants[id] = participant
	return true
}

// Len is the number of participants seen this session.
func (d *Directory) Len() int { return len(d.participants) }

// IDs lists the known ids in sorted order.
func (d *Directory) IDs() []string {
	ids := make([]string, 0, len(d.participants))
	for id := range d.participants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset forgets every participant.
func (d *Directory) Reset() {
	clear(d.participants)
}
