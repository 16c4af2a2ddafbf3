package oauth1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/identity/pkg/session"
)

// Profile is the user document returned by the fetch-user-data endpoint.
type Profile struct {
	UUID     string    `json:"uuid"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name,omitempty"`
	Accounts []Account `json:"accounts"`
	IsActive bool      `json:"is_active"`
}

// Account is one service account the user belongs to.
type Account struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name,omitempty"`
	PlanSlug string `json:"plan_slug,omitempty"`
}

// DecodeProfile reads a profile from a provider response.
func DecodeProfile(resp *Response) (*Profile, error) {
	if resp == nil {
		return nil, ErrFetchFailed
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrBadStatus, fmt.Errorf("fetch user data: status=%d", resp.StatusCode))
	}
	var p Profile
	if err := resp.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UserData projects the profile into session user data. The full name
// defaults to the email and account order is preserved.
func (p Profile) UserData() session.UserData {
	fullName := p.FullName
	if fullName == "" {
		fullName = p.Email
	}
	accounts := make([]string, 0, len(p.Accounts))
	for _, a := range p.Accounts {
		accounts = append(accounts, a.UUID)
	}
	return session.UserData{
		UUID:     p.UUID,
		Email:    p.Email,
		FullName: fullName,
		Accounts: accounts,
	}
}
