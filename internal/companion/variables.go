// Package companion pushes service cue data to a Bitfocus Companion instance
// through its custom-variable HTTP API.
package companion

import "github.com/five82/cuesync/internal/schedule"

// VariablePrefix is shared by every per-service cue variable.
const VariablePrefix = "9am"

// VariableServiceDate holds the DD/MM/YYYY date of the active service.
const VariableServiceDate = "ServiceDate"

// VariableFor maps schedule field names to Companion variable names.
var VariableFor = map[string]string{
	schedule.FieldSong1:         VariablePrefix + "Song1",
	schedule.FieldSong2:         VariablePrefix + "Song2",
	schedule.FieldSong3:         VariablePrefix + "Song3",
	schedule.FieldStart:         VariablePrefix + "Start",
	schedule.FieldEnd:           VariablePrefix + "End",
	schedule.FieldCommunion:     VariablePrefix + "Communion",
	schedule.FieldSong1Path:     VariablePrefix + "Song1Path",
	schedule.FieldSong2Path:     VariablePrefix + "Song2Path",
	schedule.FieldSong3Path:     VariablePrefix + "Song3Path",
	schedule.FieldStartPath:     VariablePrefix + "StartPath",
	schedule.FieldEndPath:       VariablePrefix + "EndPath",
	schedule.FieldCommunionPath: VariablePrefix + "CommunionPath",
}

// fieldOrder is the write order used by Push.
var fieldOrder = schedule.FieldNames

// Variables returns the service date variable followed by every field
// variable in write order.
func Variables() []string {
	out := make([]string, 0, len(fieldOrder)+1)
	out = append(out, VariableServiceDate)
	for _, name := range fieldOrder {
		out = append(out, VariableFor[name])
	}
	return out
}
