package auth

import "strings"

// StaticUser is an account declared in the environment rather than stored
// in users.json. Static users can log in but are never written back.
type StaticUser struct {
	Username string
	Password string
}

// ParseStaticUsers parses a comma-separated "user:pass" list, the format of
// the LIBRARY_USERS variable. Malformed pairs are dropped.
func ParseStaticUsers(s string) []StaticUser {
	var users []StaticUser
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		username, password, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		users = append(users, StaticUser{
			Username: strings.TrimSpace(username),
			Password: strings.TrimSpace(password),
		})
	}
	return users
}
