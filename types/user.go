package types

// User is an account able to upload documents and chat. Password holds the
// bcrypt hash, never the plaintext.
type User struct {
	ID        string `json:"id" bson:"_id"`
	Email     string `json:"email" bson:"email"`
	Password  string `json:"-" bson:"password"`
	Name      string `json:"name" bson:"name"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
}
