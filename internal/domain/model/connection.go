package model

// RequestStatus is the lifecycle state of a peer request.
type RequestStatus string

// Peer request states.
const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
	RequestBlocked  RequestStatus = "blocked"
)

// PeerRequest is a connection request from one user to another.
type PeerRequest struct {
	ID     string        `json:"id"`
	FromID string        `json:"from_id"`
	ToID   string        `json:"to_id"`
	Status RequestStatus `json:"status"`
}

// Match links two users who accepted each other.
type Match struct {
	ID             string    `json:"id"`
	ParticipantIDs [2]string `json:"participant_ids"`
}

// Involves reports whether both ids take part in the match, in either order.
func (m Match) Involves(a, b string) bool {
	p := m.ParticipantIDs
	return (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a)
}
