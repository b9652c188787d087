package models

import "time"

// TimeRange selects the aggregation horizon for the profile lookups.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

func (t TimeRange) Valid() bool {
	switch t {
	case ShortTerm, MediumTerm, LongTerm:
		return true
	}
	return false
}

// ArtistWeek is one aggregated week of plays for the user's top artist
// of that week. Week is the natural key ("09-2018" style ISO week).
type ArtistWeek struct {
	Week        string    `json:"week"`
	Artist      string    `json:"top_artist"`
	Plays       int64     `json:"count"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl"`
	ExternalURL string    `json:"externalUrl"`
}

// TrackPlay is a single immutable play event. The pair (TrackID, Date)
// identifies one listen.
type TrackPlay struct {
	TrackID     string    `json:"trackId"`
	Song        string    `json:"song"`
	Artist      string    `json:"artist"`
	Date        time.Time `json:"date"`
	ImageURL    string    `json:"imageUrl"`
	ExternalURL string    `json:"externalUrl"`
}

// ListenLaterArtist is a flagged artist the user wants to come back to.
// Name is the natural key.
type ListenLaterArtist struct {
	Name        string `json:"name"`
	ExternalURL string `json:"externalUrl"`
	ImageURL    string `json:"imageUrl"`
}

// TopArtistInfo is the profile-card value for "your top artist".
// LastPlayed is nil if the artist hasn't been played since joining.
type TopArtistInfo struct {
	Name       string     `json:"name"`
	Plays      int64      `json:"count"`
	LastPlayed *time.Time `json:"lastPlayed,omitempty"`
	ImageURL   string     `json:"imageUrl"`
}

// TopTrackInfo is the profile-card value for "your top track".
type TopTrackInfo struct {
	Name          string        `json:"name"`
	TotalPlayTime time.Duration `json:"totalPlayTime"`
	LastPlayed    *time.Time    `json:"lastPlayed,omitempty"`
	ImageURL      string        `json:"imageUrl"`
}

// ArtistResult is one row of an artist search response.
type ArtistResult struct {
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	ExternalURL string `json:"externalUrl"`
}

// ActivityPoint is one period of an artist's play-count time series.
type ActivityPoint struct {
	Date  time.Time `json:"date"`
	Plays int       `json:"numberOfPlays"`
}
