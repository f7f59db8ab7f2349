package handlers

import "strconv"

// sameUser checks a path parameter against the authenticated user id. Path
// ids are kept for API compatibility but never trusted over the token.
func sameUser(param string, userId uint) bool {
	id, err := strconv.ParseUint(param, 10, 32)
	if err != nil {
		return false
	}
	return uint(id) == userId
}
