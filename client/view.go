package client

import "game-hub/models"

// View is a screen of the hub.
type View int

const (
	ViewHome View = iota
	ViewLogin
	ViewRegister
	ViewAdmin
	ViewUpload
	ViewProfile
	ViewGameDetails
)

var viewNames = map[View]string{
	ViewHome:        "home",
	ViewLogin:       "login",
	ViewRegister:    "register",
	ViewAdmin:       "admin",
	ViewUpload:      "upload",
	ViewProfile:     "profile",
	ViewGameDetails: "game-details",
}

func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return "unknown"
}

// ParseView maps a view name to its View. Unknown names are home.
func ParseView(name string) View {
	for v, n := range viewNames {
		if n == name {
			return v
		}
	}
	return ViewHome
}

type access int

const (
	accessPublic access = iota
	accessIdentity
	accessAdmin
)

var viewAccess = map[View]access{
	ViewAdmin:   accessAdmin,
	ViewUpload:  accessAdmin,
	ViewProfile: accessIdentity,
}

// Identity is what Guard needs to know about the current user.
type Identity interface {
	Loading() bool
	User() *models.Profile
	IsAdmin() bool
}

// Guard returns the view to render for a request to open v. Protected views
// fall back to home without an error when the identity does not qualify.
// A session that is still loading counts as signed out.
func Guard(v View, id Identity) View {
	if _, known := viewNames[v]; !known {
		return ViewHome
	}
	switch viewAccess[v] {
	case accessIdentity:
		if id == nil || id.Loading() || id.User() == nil {
			return ViewHome
		}
	case accessAdmin:
		if id == nil || id.Loading() || id.User() == nil || !id.IsAdmin() {
			return ViewHome
		}
	}
	return v
}
