package sessions

// Character is a well-known figure the host can pick instead of a friend.
// Their preferences are drawn at random when chosen.
type Character struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var roster = []Character{
	{ID: "sherlock", Name: "Sherlock"},
	{ID: "naruto", Name: "Naruto"},
	{ID: "luffy", Name: "Luffy"},
	{ID: "tony", Name: "Tony"},
	{ID: "miyazaki", Name: "Miyazaki"},
	{ID: "eleven", Name: "Eleven"},
	{ID: "gandalf", Name: "Gandalf"},
	{ID: "leia", Name: "Leia"},
	{ID: "spike", Name: "Spike"},
}

// Characters returns the roster in display order.
func Characters() []Character {
	out := make([]Character, len(roster))
	copy(out, roster)
	return out
}

// FindCharacter looks a character up by id.
func FindCharacter(id string) (Character, bool) {
	for _, c := range roster {
		if c.ID == id {
			return c, true
		}
	}
	return Character{}, false
}
