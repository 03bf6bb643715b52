package redis

import "fmt"

const keyPrefix = "hrbots:stats"

// userKey returns the hash holding one user's stats.
func userKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, userID)
}

// usersKey returns the SET of every user id with stats.
func usersKey() string {
	return fmt.Sprintf("%s:users", keyPrefix)
}

// usernameIndexKey returns the username -> user id index entry.
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}
