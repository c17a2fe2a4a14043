package chat

import "strings"

// Client-derived session ids encode the selection pair so a brand-new chat
// can be resolved without any stored state: "<mythologyID>_<godID>" for a
// persona chat, "<mythologyID>_mythology" for a narrator chat. Persisted
// account sessions use opaque ULIDs instead, which never match this shape.
const narratorMarker = "mythology"

func EncodeSessionID(mythologyID, godID string) string {
	if godID == "" {
		return mythologyID + "_" + narratorMarker
	}
	return mythologyID + "_" + godID
}

// DecodeSessionID extracts the mythology/god pair from an encoded id.
// ok is false when the id does not carry the encoding.
func DecodeSessionID(id string) (mythologyID, godID string, ok bool) {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	if parts[1] == narratorMarker {
		return parts[0], "", true
	}
	return parts[0], parts[1], true
}
