package steam

import (
	"fmt"
	"path/filepath"
	"strconv"

	"steam-library/core/keyvalue"
)

// LoginUser is one local account from the login registry.
type LoginUser struct {
	// SteamID is the account's 64-bit steam id.
	SteamID uint64

	// AccountName is the login name, PersonaName the display name.
	AccountName string
	PersonaName string

	// MostRecent marks the account last logged in on this installation.
	MostRecent bool
}

// LoginUsersPath returns the local login registry beneath the installation
// root.
func (c Config) LoginUsersPath() string {
	return filepath.Join(c.InstallPath, "config", "loginusers.vdf")
}

// LoginUsers enumerates the accounts that have logged in on this
// installation, in registry order. Entries not keyed by a numeric steam id
// are skipped.
func (c Config) LoginUsers() ([]LoginUser, error) {
	doc, err := keyvalue.ParseFile(c.LoginUsersPath())
	if err != nil {
		return nil, err
	}

	var users []LoginUser
	for _, entry := range doc.Child("users").Children {
		id, err := strconv.ParseUint(entry.Name, 10, 64)
		if err != nil {
			continue
		}
		users = append(users, LoginUser{
			SteamID:     id,
			AccountName: entry.Child("AccountName").String(""),
			PersonaName: entry.Child("PersonaName").String(""),
			MostRecent:  entry.Child("MostRecent").Int(0) == 1,
		})
	}
	return users, nil
}

// MostRecentUser returns the account flagged most recent, falling back to
// the first registry entry when no entry carries the flag.
func (c Config) MostRecentUser() (LoginUser, error) {
	users, err := c.LoginUsers()
	if err != nil {
		return LoginUser{}, err
	}
	if len(users) == 0 {
		return LoginUser{}, fmt.Errorf("no local accounts in %s", c.LoginUsersPath())
	}
	for _, u := range users {
		if u.MostRecent {
			return u, nil
		}
	}
	return users[0], nil
}
