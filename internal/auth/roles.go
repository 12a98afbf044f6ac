package auth

// Roles carried in token claims. Route guards and the register flow
// share these so the two never drift apart.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)
