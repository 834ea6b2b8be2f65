package model

// PublicUser is the subset of a user that may be shown to other people.
type PublicUser struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	ProfileVisibility string `json:"profile_visibility"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Username:          u.Username,
		ProfileVisibility: u.ProfileVisibility,
	}
}
