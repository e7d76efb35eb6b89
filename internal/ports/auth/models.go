package auth

// Claims es la identidad extraída del token. El núcleo de sincronización
// solo usa UserID como owner scope.
type Claims struct {
	UserID string
	Email  string
}
