package entity

// Actor is the authenticated caller as resolved by the identity collaborator.
// The engine only ever reads the identity and role off it.
type Actor struct {
	Identity string `json:"identity"`
	Role     Role   `json:"role"`
}
