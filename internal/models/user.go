package models

import "time"

// User is a landlord/operator account. Phone number is the login identity
// and is always stored in E.164 form.
type User struct {
	ID            string     `bson:"_id,omitempty" json:"id"`
	PhoneNumber   string     `bson:"phoneNumber" json:"phoneNumber"`
	FullName      string     `bson:"fullName" json:"fullName"`
	PasswordHash  string     `bson:"passwordHash" json:"-"`
	Language      string     `bson:"language" json:"language"` // "en" | "sw"
	IsActive      bool       `bson:"isActive" json:"isActive"`
	IsStaff       bool       `bson:"isStaff" json:"isStaff"`
	DateJoined    time.Time  `bson:"dateJoined" json:"dateJoined"`
	LastLogin     *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	LastLogout    *time.Time `bson:"lastLogout,omitempty" json:"lastLogout,omitempty"`
	LoginAttempts int        `bson:"loginAttempts" json:"-"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// UserSession is an audit record of a device login.
type UserSession struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	UserID       string     `bson:"userId" json:"userId"`
	DeviceType   string     `bson:"deviceType" json:"deviceType"`
	IPAddress    string     `bson:"ipAddress" json:"ipAddress"`
	LastActivity time.Time  `bson:"lastActivity" json:"lastActivity"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	EndedAt      *time.Time `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
}
