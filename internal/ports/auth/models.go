package auth

// Claims representa la sesión resuelta a partir del token.
// UpstreamToken es el token que emitió el backend Zoónica; se reenvía
// como Bearer en las operaciones que lo exigen.
type Claims struct {
	UserID        string
	Email         string
	Name          string
	UpstreamToken string
}
