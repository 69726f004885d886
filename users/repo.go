package users

type UserRepo interface {
	// Upsert stores the user. It fails with ErrUserExists when another user holds the email.
	Upsert(user *User) error
	GetByEmail(email string) (*User, error)
	SetConfirmed(email string, confirmed bool) error
}
