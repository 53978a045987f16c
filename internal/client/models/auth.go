// Package models defines the request and response shapes exchanged with the
// ridegate REST API by the session layer.
package models

// TokenPair is the response of POST /auth/token/.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials is the body of POST /auth/token/.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PassengerRegistration is the body of POST /passenger/register/.
type PassengerRegistration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
}

// DriverRegistration is the body of POST /driver/register/: a passenger
// profile plus the documents a driver has to provide.
type DriverRegistration struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Phone         string `json:"phone"`
	FullName      string `json:"full_name"`
	NationalID    string `json:"national_id"`
	LicenseNumber string `json:"license_number"`
}

// Passenger returns the fields shared with a passenger registration.
func (d DriverRegistration) Passenger() PassengerRegistration {
	return PassengerRegistration{
		Username: d.Username,
		Email:    d.Email,
		Password: d.Password,
		Phone:    d.Phone,
		FullName: d.FullName,
	}
}
