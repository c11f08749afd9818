package core

// DirectRoomName derives the conversation room for a pair of user ids.
// The ids are sorted lexicographically before joining, so both peers
// compute the same name independently without a discovery step.
func DirectRoomName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

// UserChannel is the private per-user room used for notifications that
// must reach a user regardless of which conversation they are viewing.
func UserChannel(userID string) string {
	return "user:" + userID
}
