package domain

// User type constants define the allowed account types.
const (
	UserTypeSuperAdmin = "superadmin"
	UserTypeLSPP       = "lspp"
	UserTypeUser       = "user"
)

// ValidUserTypes returns the set of valid account types.
func ValidUserTypes() []string {
	return []string{UserTypeSuperAdmin, UserTypeLSPP, UserTypeUser}
}

// IsValidUserType checks whether the given string is a valid account type.
func IsValidUserType(t string) bool {
	for _, v := range ValidUserTypes() {
		if v == t {
			return true
		}
	}
	return false
}
