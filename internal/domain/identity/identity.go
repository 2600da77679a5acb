// Package identity models who is acting on a proposal: a registered user or
// a guest known only by a display name.
package identity

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the identity variants.
type Kind int

const (
	KindAnonymous Kind = iota
	KindRegistered
	KindGuest
)

// Identity is either Registered{id} or Guest{name}. The zero value is anonymous.
type Identity struct {
	kind      Kind
	userID    int64
	guestName string
}

// Registered returns the identity of a registered user.
func Registered(userID int64) Identity {
	return Identity{kind: KindRegistered, userID: userID}
}

// Guest returns the identity of a guest with the given display name.
func Guest(name string) Identity {
	return Identity{kind: KindGuest, guestName: name}
}

// Resolve builds an identity from the optional wire fields. A user id wins
// over a guest name; neither yields the anonymous identity.
func Resolve(userID *int64, guestName *string) Identity {
	if userID != nil && *userID != 0 {
		return Registered(*userID)
	}
	if guestName != nil && strings.TrimSpace(*guestName) != "" {
		return Guest(*guestName)
	}
	return Identity{}
}

// Kind reports which variant the identity holds.
func (i Identity) Kind() Kind {
	return i.kind
}

// IsAnonymous reports whether neither a user id nor a guest name is set.
func (i Identity) IsAnonymous() bool {
	return i.kind == KindAnonymous
}

// UserID returns the registered user id, if any.
func (i Identity) UserID() (int64, bool) {
	return i.userID, i.kind == KindRegistered
}

// GuestName returns the guest display name, if any.
func (i Identity) GuestName() (string, bool) {
	return i.guestName, i.kind == KindGuest
}

// DisplayName is the human-readable attribution used in broadcasts.
func (i Identity) DisplayName() string {
	switch i.kind {
	case KindRegistered:
		return fmt.Sprintf("User %d", i.userID)
	case KindGuest:
		return i.guestName
	default:
		return "Anonymous"
	}
}

// Key is a stable string used to de-duplicate roster entries.
func (i Identity) Key() string {
	switch i.kind {
	case KindRegistered:
		return "user:" + strconv.FormatInt(i.userID, 10)
	case KindGuest:
		return "guest:" + i.guestName
	default:
		return ""
	}
}

// Columns returns the nullable storage representation (user_id, guest_name).
func (i Identity) Columns() (userID *int64, guestName *string) {
	switch i.kind {
	case KindRegistered:
		id := i.userID
		return &id, nil
	case KindGuest:
		name := i.guestName
		return nil, &name
	default:
		return nil, nil
	}
}

func (i Identity) String() string {
	return i.DisplayName()
}
