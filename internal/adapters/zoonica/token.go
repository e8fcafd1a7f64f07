package zoonica

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type upstreamClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// subjectFromToken lee el id de usuario del token del backend cuando la
// respuesta de auth no trae el usuario. No verifica la firma: el token solo
// se reenvía al mismo backend que lo emitió.
func subjectFromToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	var claims upstreamClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return ""
	}
	if claims.ID != "" {
		return claims.ID
	}
	return claims.Subject
}
