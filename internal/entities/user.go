package entities

// User is a participant in the game, identified by their Discord user id
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	IsGM bool   `json:"is_gm"`
}
