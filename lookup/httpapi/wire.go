package httpapi

// searchHit is one search result on the wire.
type searchHit struct {
	Id    string `json:"id"`
	Title string `json:"title"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

type genresResponse struct {
	Id     string   `json:"id"`
	Genres []string `json:"genres"`
}

type errorResponse struct {
	Error string `json:"error"`
}
