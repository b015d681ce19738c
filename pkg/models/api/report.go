package api

import "time"

type Message struct {
	Message string `json:"message"`
}

type Error struct {
	Error string `json:"error"`
}

type ReportInfo struct {
	LastUpdate time.Time `json:"lastUpdate"`
	Filename   string    `json:"filename"`
}

type Health struct {
	Status string `json:"status"`
}
