package user

import "time"

const (
	SessionKey = "@eggcelent_user"

	DefaultAvatar     = "🧑"
	MinPasswordLength = 6
)

type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// Session is the signed-in user as kept on the device.
type Session struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	JoinedAt time.Time `json:"joinedDate"`
	Token    string    `json:"token"`
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// ProfileUpdate carries the fields to change; nil fields are kept.
type ProfileUpdate struct {
	Name    *string
	Email   *string
	Avatar  *string
	Phone   *string
	Address *string
}

func (u ProfileUpdate) apply(s Session) Session {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Email != nil {
		s.Email = *u.Email
	}
	if u.Avatar != nil {
		s.Avatar = *u.Avatar
	}
	if u.Phone != nil {
		s.Phone = *u.Phone
	}
	if u.Address != nil {
		s.Address = *u.Address
	}
	return s
}
