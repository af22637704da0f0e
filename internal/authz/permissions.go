package authz

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PermReadMovies    = "read:movies"
	PermCreateMovies  = "create:movies"
	PermUpdateMovies  = "update:movies"
	PermDeleteMovies  = "delete:movies"
	PermReadActors    = "read:actors"
	PermCreateActors  = "create:actors"
	PermUpdateActors  = "update:actors"
	PermDeleteActors  = "delete:actors"
	PermUpdateProfile = "update:profile"
	PermReadUsers     = "read:users"
	PermUpdateUsers   = "update:users"
)

// Permissions is the role→permission table. It is built once at
// startup and treated as read-only afterwards.
type Permissions struct {
	byRole map[string][]string
}

func Defaults() *Permissions {
	return &Permissions{byRole: map[string][]string{
		RoleUser: {
			PermReadMovies,
			PermReadActors,
			PermUpdateProfile,
		},
		RoleAdmin: {
			PermReadMovies,
			PermCreateMovies,
			PermUpdateMovies,
			PermDeleteMovies,
			PermReadActors,
			PermCreateActors,
			PermUpdateActors,
			PermDeleteActors,
			PermUpdateProfile,
			PermReadUsers,
			PermUpdateUsers,
		},
	}}
}

// For returns the permission set for a role. Unknown roles get none.
func (p *Permissions) For(role string) []string {
	perms := p.byRole[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

func (p *Permissions) Allowed(role, required string) bool {
	for _, perm := range p.byRole[role] {
		if perm == required {
			return true
		}
	}
	return false
}

func HasPermission(perms []string, required string) bool {
	for _, perm := range perms {
		if perm == required {
			return true
		}
	}
	return false
}
