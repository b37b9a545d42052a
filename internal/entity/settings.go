package entity

// Settings is the appearance document kept inside database.json.
type Settings struct {
	Background     *string `json:"background"`
	BackgroundType string  `json:"backgroundType"`
}

// BackgroundOption is one selectable background image.
type BackgroundOption struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
