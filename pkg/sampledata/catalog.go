package sampledata

// Genres seeded into an empty store.
var Genres = []string{
	"Rock", "Jazz", "Metal", "Alternative", "Disco",
	"Blues", "Latin", "Reggae", "Pop", "Classical",
}

// Album is a catalog entry referencing its genre and artist by name.
type Album struct {
	Title  string
	Genre  string
	Artist string
	Price  float64
}

// Albums seeded into an empty store.
var Albums = []Album{
	{"The Best Of Men At Work", "Pop", "Men At Work", 8.99},
	{"A Copland Celebration, Vol. I", "Classical", "Aaron Copland & London Symphony Orchestra", 8.99},
	{"Worlds", "Jazz", "Aaron Goldberg", 8.99},
	{"For Those About To Rock We Salute You", "Rock", "AC/DC", 8.99},
	{"Let There Be Rock", "Rock", "AC/DC", 8.99},
	{"Balls to the Wall", "Metal", "Accept", 8.99},
	{"Restless and Wild", "Metal", "Accept", 8.99},
	{"Jagged Little Pill", "Alternative", "Alanis Morissette", 8.99},
	{"Facelift", "Rock", "Alice In Chains", 8.99},
	{"Frank", "Pop", "Amy Winehouse", 8.99},
	{"Ring My Bell", "Disco", "Anita Ward", 8.99},
	{"Acústico MTV", "Latin", "Os Paralamas Do Sucesso", 8.99},
	{"The Best Of Buddy Guy", "Blues", "Buddy Guy", 8.99},
	{"Legend", "Reggae", "Bob Marley", 8.99},
}

func artistNames() []string {
	seen := map[string]bool{}
	var out []string
	for _, a := range Albums {
		if !seen[a.Artist] {
			seen[a.Artist] = true
			out = append(out, a.Artist)
		}
	}
	return out
}
