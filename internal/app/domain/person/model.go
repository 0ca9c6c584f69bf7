// Package person models a club member: identity, contact details,
// equipment-preference defaults, diving-level string, and login credentials.
package person

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Person is a club member.
type Person struct {
	ID    string
	FirstName string
	LastName  string
	Email     string // unique, compared case-insensitively
	Phone     string

	// Preference defaults, pre-filled into questionnaires.
	WantsRegulator     bool
	WantsNitrox        bool
	WantsSecondReg     bool
	WantsStab          bool
	StabSize           *string
	NitroxTrainingBase bool
	NitroxConfirmed    bool
	NitroxLegacy       bool
	HasCar             bool
	CarSeats           *int

	DivingLevel *string // composite qualification string, see qualification.Parse
	GroupID     *string

	PasswordHash            *string
	TemporaryPasswordHash   *string
	TemporaryPasswordExpiry *time.Time
	MustChangePassword      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName renders "First Last" for display and email composition.
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// SetPassword hashes plain with bcrypt and stores it, clearing any pending
// temporary-password state. The core never stores or compares plaintext.
func (p *Person) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	p.PasswordHash = &h
	p.MustChangePassword = false
	p.TemporaryPasswordHash = nil
	p.TemporaryPasswordExpiry = nil
	return nil
}

// SetTemporaryPassword hashes plain as a temporary, time-boxed credential and
// marks the person as required to change it on next use.
func (p *Person) SetTemporaryPassword(plain string, expiry time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	p.TemporaryPasswordHash = &h
	p.TemporaryPasswordExpiry = &expiry
	p.MustChangePassword = true
	return nil
}

// HasValidCredential reports the §3 invariant: if must_change_password then
// one of the password fields is non-empty.
func (p Person) HasValidCredential() bool {
	if !p.MustChangePassword {
		return true
	}
	return p.PasswordHash != nil || p.TemporaryPasswordHash != nil
}
