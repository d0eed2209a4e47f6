package tokenpkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRole = "student"

func TestNewMaker(t *testing.T) {
	key := strings.Repeat("k", 32)

	maker, err := NewMaker(TypePaseto, key)
	require.NoError(t, err)
	require.IsType(t, &PasetoMaker{}, maker)

	maker, err = NewMaker(TypeJWT, key)
	require.NoError(t, err)
	require.IsType(t, &JWTMaker{}, maker)

	_, err = NewMaker("saml", key)
	require.EqualError(t, err, `unsupported token type "saml"`)
}
