package entity

// Status is the body of GET /status.
type Status struct {
	UpdatedAt    string       `json:"updated_at"`
	Dependencies Dependencies `json:"dependencies"`
}

type Dependencies struct {
	Database Database `json:"database"`
}

// Database reports the server the service is connected to.
type Database struct {
	Version           string `json:"version"`
	MaxConnections    int    `json:"max_connections"`
	OpenedConnections int    `json:"opened_connections"`
}
