package domain

// User is the person a ticket was raised for. UserID is the identity key:
// two values with the same UserID are the same logical user.
type User struct {
	UserID      string `json:"UserID" validate:"required"`
	DisplayName string `json:"DisplayName"`
	Email       string `json:"Email" validate:"omitempty,email"`
}
