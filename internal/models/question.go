package models

// Question represents an audience question submitted to a speaker.
// CreatedAt is epoch milliseconds so clients can sort without parsing dates.
type Question struct {
	ID        string `json:"id"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Approved  bool   `json:"approved"`
	Votes     int    `json:"votes"`
	CreatedAt int64  `json:"createdAt"`
}
