package main

// Track describes one playable item. Tracks are addressed by their position
// in the playlist; ID is informational only.
type Track struct {
	ID                   int
	TrackName            string
	ArtistName           string
	ArtworkURL           string
	MediaURL             string
	DurationMilliseconds int // nominal, used for display only
}

// defaultTracks is the hardcoded playlist the bar plays through.
func defaultTracks() []Track {
	return []Track{
		{
			ID:                   1,
			TrackName:            "The Pretender",
			ArtistName:           "Foo Fighters",
			ArtworkURL:           "https://images.sk-static.com/images/media/profile_images/artists/29315/huge_avatar",
			MediaURL:             "https://p.scdn.co/mp3-preview/6aba2f4e671ffe07fd60807ca5fef82d48146d4c?cid=1cef747d7bdf4c52ac981490515bda71",
			DurationMilliseconds: 30000,
		},
		{
			ID:                   2,
			TrackName:            "Do I Wanna Know?",
			ArtistName:           "Arctic Monkeys",
			ArtworkURL:           "https://cps-static.rovicorp.com/3/JPG_500/MI0003/626/MI0003626958.jpg?partner=allrovi.com",
			MediaURL:             "https://p.scdn.co/mp3-preview/9ec5fce4b39656754da750499597fcc1d2cc82e5?cid=1cef747d7bdf4c52ac981490515bda71",
			DurationMilliseconds: 30000,
		},
	}
}
